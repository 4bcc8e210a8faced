package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"example.com/product-catalog/internal/config"
	"example.com/product-catalog/internal/infra/persistence/sqldb"
	"example.com/product-catalog/internal/infra/telemetry"
	"example.com/product-catalog/internal/usecase/product"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger, err := telemetry.NewLogger(os.Stdout, cfg.Log, cfg.OTLP)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Product catalog failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.New(ctx, cfg.OTLP, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tel.Shutdown(shutdownCtx)
	}()

	session, err := sqldb.Open(ctx, cfg.DB, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	if cfg.DB.Migrate {
		if err := session.Migrate(ctx); err != nil {
			return err
		}
	}

	repo := sqldb.NewProductRepository(session, logger)
	svc := product.NewService(product.NewMapper(nil), repo, product.WithLogger(logger))

	return session.WithTransaction(ctx, func(ctx context.Context) error {
		return demo(ctx, svc)
	})
}

func demo(ctx context.Context, svc *product.Service) error {
	id, err := svc.Create(ctx, input("Свекла", "Овощи всесезонные", "5.21"))
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	if id == uuid.Nil {
		return errors.New("create: product rejected by validation")
	}
	fmt.Printf("Created product %s\n", id)

	view, err := svc.Get(ctx, id)
	if err != nil {
		return err
	}
	printView("Read", view)

	if err := svc.Update(ctx, id, input("Сверло ДП", "Инструмент для ремонта", "8.56")); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	view, err = svc.Get(ctx, id)
	if err != nil {
		return err
	}
	printView("Updated", view)

	fmt.Printf("Catalog holds %d product(s)\n", len(svc.GetAll(ctx)))

	if err := svc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if _, err := svc.Get(ctx, id); err != nil {
		fmt.Printf("Deleted product %s: %v\n", id, err)
	}
	return nil
}

func input(name, description, price string) *product.Input {
	p := decimal.RequireFromString(price)
	return &product.Input{Name: &name, Description: &description, Price: &p}
}

func printView(step string, v *product.View) {
	fmt.Printf("%s product %s: name=%q description=%q price=%s\n",
		step, v.ID, v.Name, v.Description, v.Price.StringFixed(2))
}
