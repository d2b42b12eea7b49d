package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/posprint/internal/application/service"
	"github.com/sangkips/posprint/internal/config"
	"github.com/sangkips/posprint/internal/domain/entity"
	domainRepo "github.com/sangkips/posprint/internal/domain/repository"
	"github.com/sangkips/posprint/internal/infrastructure/bridge"
	"github.com/sangkips/posprint/internal/infrastructure/database"
	"github.com/sangkips/posprint/internal/infrastructure/mq"
	"github.com/sangkips/posprint/internal/infrastructure/repository"
	"github.com/sangkips/posprint/internal/presentation/http/handler"
	"github.com/sangkips/posprint/internal/presentation/http/routes"
	"github.com/sangkips/posprint/internal/receipt"
	"github.com/sangkips/posprint/pkg/printer"
	"github.com/sangkips/posprint/pkg/utils"
)

type repos struct {
	printers    domainRepo.PrinterRepository
	sequence    domainRepo.BillSequenceRepository
	jobs        domainRepo.PrintJobRepository
	profiles    domainRepo.BusinessProfileRepository
	idempotency domainRepo.IdempotencyRepository
}

func main() {
	mode := flag.String("mode", "agent", "agent serves the HTTP API, worker consumes the print queue")
	flag.Parse()

	// Load configuration
	cfg := config.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.App.Debug)})).
		With("service", cfg.App.Name, "mode", *mode)
	slog.SetDefault(log)
	printer.SetLogger(log.With("component", "printer"))
	receipt.SetLogger(log.With("component", "receipt"))

	// run returns only after its deferred cleanup, so devices and the queue
	// are released before the exit status is set.
	if err := run(cfg, log, *mode); err != nil {
		log.Error("print agent stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger, mode string) error {

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	station := &config.Station{}
	if cfg.PrintersFile != "" {
		st, err := config.LoadStation(cfg.PrintersFile)
		if err != nil {
			log.Warn("no station file loaded", "path", cfg.PrintersFile, "error", err)
		} else {
			station = st
		}
	}

	r, err := openRepos(cfg, station)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	// Direct transports. Network and system printers need the bridge.
	usb := printer.NewUSBConnector(cfg.Printing.USBVendors...)
	defer usb.Close()
	bt := printer.NewBluetoothConnector()
	conns := printer.NewConnectionManager(map[printer.Transport]printer.Connector{
		printer.TransportUSB:       usb,
		printer.TransportBluetooth: bt,
		printer.TransportSerial:    printer.NewSerialConnector(),
	},
		printer.WithConnectTimeout(cfg.Printing.ConnectTimeout),
		printer.WithChunkPolicy(printer.TransportUSB, printer.ChunkPolicy{Size: cfg.Printing.USBChunkSize}),
		printer.WithChunkPolicy(printer.TransportBluetooth, printer.ChunkPolicy{Size: cfg.Printing.BluetoothChunk, Delay: cfg.Printing.BluetoothDelay}),
		printer.WithChunkPolicy(printer.TransportSerial, printer.ChunkPolicy{Size: cfg.Printing.SerialChunkSize}),
	)
	defer conns.ClearAll()

	var localBridge *bridge.Local
	var b bridge.Bridge
	switch cfg.Bridge.Mode {
	case "local":
		localBridge = bridge.NewLocal(conns,
			bridge.WithUSBDiscovery(usb),
			bridge.WithBluetoothScan(bt, cfg.Printing.ScanTimeout),
		)
		b = localBridge
	case "remote":
		b = bridge.NewRemote(cfg.Bridge.RemoteURL, cfg.Bridge.Token, cfg.Bridge.Timeout)
	default:
		log.Info("bridge disabled, only direct printing is available")
	}

	dispatcher := service.NewPrintDispatcher(r.printers, conns, service.DispatcherOptions{
		Bridge:   b,
		Numbers:  service.NewBillNumberer(r.sequence, cfg.Printing.BillSequence),
		Profiles: r.profiles,
		Jobs:     r.jobs,
		Timeout:  cfg.Printing.Timeout,
		Logger:   log.With("component", "dispatcher"),
	})

	var queue *mq.Client
	if cfg.RabbitMQ.Enabled {
		queue, err = mq.Dial(mq.Config{
			Host:     cfg.RabbitMQ.Host,
			Port:     cfg.RabbitMQ.Port,
			User:     cfg.RabbitMQ.User,
			Password: cfg.RabbitMQ.Password,
			VHost:    cfg.RabbitMQ.VHost,
			Queue:    cfg.RabbitMQ.Queue,
		})
		if err != nil {
			return fmt.Errorf("connect to RabbitMQ: %w", err)
		}
		defer queue.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch mode {
	case "worker":
		if queue == nil {
			return errors.New("worker mode needs RABBITMQ_ENABLED=true")
		}
		worker := service.NewPrintWorker(dispatcher, log.With("component", "worker"))
		log.Info("consuming print queue", "queue", cfg.RabbitMQ.Queue)
		if err := queue.Consume(ctx, cfg.App.Name+"-worker", worker.Handle); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("print worker: %w", err)
		}
		return nil
	default:
		return serve(ctx, cfg, log, r, station, dispatcher, conns, b, localBridge, queue)
	}
}

func serve(
	ctx context.Context,
	cfg *config.Config,
	log *slog.Logger,
	r *repos,
	station *config.Station,
	dispatcher *service.PrintDispatcher,
	conns *printer.ConnectionManager,
	b bridge.Bridge,
	localBridge *bridge.Local,
	queue *mq.Client,
) error {
	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours, cfg.JWT.Issuer)

	agents := agentCredentials(cfg.Agent, station.Agents)
	if len(agents) == 0 {
		log.Warn("no agent credentials configured, token issuance will reject every client")
	}

	var printQueue *service.PrintQueue
	if queue != nil {
		printQueue = service.NewPrintQueue(queue, service.NewBillNumberer(r.sequence, cfg.Printing.BillSequence))
	}

	authService := service.NewAuthService(agents, jwtManager)
	printerService := service.NewPrinterService(r.printers, r.jobs, conns, b, log.With("component", "printers"))
	profileService := service.NewBusinessProfileService(r.profiles, profileDefaults(cfg.Printing))
	previewService := service.NewPreviewService(r.profiles)

	handlers := &routes.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Print:   handler.NewPrintHandler(dispatcher, printQueue, previewService),
		Printer: handler.NewPrinterHandler(printerService),
		Profile: handler.NewBusinessProfileHandler(profileService),
	}
	// Only a locally driven bridge is served; a remote one is a client of another agent.
	if localBridge != nil {
		handlers.Bridge = handler.NewBridgeHandler(localBridge)
	}

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: r.idempotency,
		Logger:          log.With("component", "http"),
	})

	go purgeIdempotencyKeys(ctx, r.idempotency, log)

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting print agent", "port", port, "env", cfg.App.Env, "native", dispatcher.Native())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	return nil
}

func openRepos(cfg *config.Config, station *config.Station) (*repos, error) {
	if !cfg.Database.Enabled {
		var defaults *entity.BusinessProfile
		if cfg.Printing.BusinessName != "" {
			p := profileDefaults(cfg.Printing)
			defaults = &p
		}
		return &repos{
			printers:    repository.NewStaticPrinterRepository(station.Printers),
			sequence:    repository.NewMemoryBillSequence(cfg.Printing.BillNumberStart),
			jobs:        repository.NewMemoryPrintJobRepository(cfg.Printing.PrintJobLogLimit),
			profiles:    repository.NewMemoryBusinessProfileRepository(defaults),
			idempotency: repository.NewMemoryIdempotencyRepository(),
		}, nil
	}

	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}
	if err := database.SeedDefaultData(db, station.Printers, cfg.Printing.BillSequence, cfg.Printing.BillNumberStart); err != nil {
		slog.Warn("failed to seed default data", "error", err)
	}
	return &repos{
		printers:    repository.NewPrinterRepository(db),
		sequence:    repository.NewBillSequenceRepository(db),
		jobs:        repository.NewPrintJobRepository(db),
		profiles:    repository.NewBusinessProfileRepository(db),
		idempotency: repository.NewIdempotencyRepository(db),
	}, nil
}

func profileDefaults(p config.PrintingConfig) entity.BusinessProfile {
	return entity.BusinessProfile{
		Name:           p.BusinessName,
		Address:        p.BusinessAddress,
		Phone:          p.BusinessPhone,
		GSTIN:          p.BusinessGSTIN,
		FSSAI:          p.BusinessFSSAI,
		Footer:         p.BusinessFooter,
		CurrencySymbol: p.CurrencySymbol,
		ShowGST:        p.ShowGST,
		IsPureVeg:      p.PureVeg,
	}
}

func agentCredentials(env config.AgentConfig, listed []config.AgentConfig) []service.AgentCredential {
	var out []service.AgentCredential
	if env.ClientID != "" && env.KeyHash != "" {
		out = append(out, service.AgentCredential(env))
	}
	for _, a := range listed {
		out = append(out, service.AgentCredential(a))
	}
	return out
}

func purgeIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, log *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := repo.DeleteExpired(ctx); err != nil {
				log.Warn("failed to purge idempotency keys", "error", err)
			}
		}
	}
}

func logLevel(debug bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
