package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	pendenciaDTO "github.com/bebel/pendencias/internal/adapter/dto/pendencia"
	"github.com/bebel/pendencias/internal/domain/entities"
	"github.com/bebel/pendencias/internal/domain/filter"
	"github.com/bebel/pendencias/internal/infrastructure/external/pendenciasapi"
	"github.com/bebel/pendencias/internal/infrastructure/fixtures"
	"github.com/bebel/pendencias/internal/usecase/board"
	"github.com/bebel/pendencias/pkg/config"
)

type flags struct {
	debug bool
	once  bool

	move   string
	editID int64
	patch  string
	create string

	status      string
	tipo        string
	prioridade  string
	responsavel string
	search      string
}

func parseFlags() flags {
	var f flags
	flag.BoolVar(&f.debug, "debug", false, "verbose logging")
	flag.BoolVar(&f.once, "once", false, "print the board once and exit")
	flag.StringVar(&f.move, "move", "", "move a card, e.g. 5:FEITO")
	flag.Int64Var(&f.editID, "id", 0, "pendência id for -patch")
	flag.StringVar(&f.patch, "patch", "", `partial update as JSON, e.g. '{"prioridade":4}'`)
	flag.StringVar(&f.create, "create", "", `create a pendência from JSON, e.g. '{"descricao":"x"}'`)
	flag.StringVar(&f.status, "status", "", "filter by status (SINALIZADA, RESOLVIDA, IGNORADA)")
	flag.StringVar(&f.tipo, "tipo", "", "filter by type")
	flag.StringVar(&f.prioridade, "prioridade", "", "filter by priority 1-5")
	flag.StringVar(&f.responsavel, "responsavel", "", "filter by assignee id, or none")
	flag.StringVar(&f.search, "q", "", "free-text search")
	flag.Parse()
	return f
}

func main() {
	f := parseFlags()

	if err := godotenv.Load(); err != nil && f.debug {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}
	cfg, err := config.LoadBoard()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := newLogger(f.debug)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	spec, err := filter.ParseSpec(f.status, f.tipo, f.prioridade, f.responsavel, f.search)
	if err != nil {
		log.Fatalf("Invalid filter: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := pendenciasapi.NewClient(cfg.APIURL, cfg.RequestTimeout, logger)
	var fallback board.Fallback
	if cfg.Fallback {
		fallback = fixtures.Sample()
	}
	ctrl := board.NewController(client, fallback, board.Config{
		RefreshInterval: cfg.RefreshInterval,
		RetryMaxElapsed: cfg.RetryMaxElapsed,
	}, logger)

	if profs, _, err := client.Profissionais(ctx); err != nil {
		logger.Warn("board.roster.unavailable", zap.Error(err))
	} else {
		ctrl.SetRoster(profs)
	}

	// failures are reported through the notice stream
	ctrl.SetFilter(ctx, spec)
	if spec.Structured().Key() == "" {
		ctrl.Refresh(ctx)
	}

	if err := applyIntents(ctx, ctrl, f); err != nil {
		log.Fatalf("Invalid intent: %v", err)
	}

	drainNotices(ctrl)
	render(os.Stdout, ctrl.Board(), time.Now())
	if f.once {
		return
	}

	watch(ctx, ctrl, logger)
}

// applyIntents issues the one-shot edits given on the command line
func applyIntents(ctx context.Context, ctrl *board.Controller, f flags) error {
	if f.move != "" {
		id, col, ok := strings.Cut(f.move, ":")
		if !ok {
			return fmt.Errorf("-move expects id:COLUMN, got %q", f.move)
		}
		n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		if err != nil {
			return fmt.Errorf("-move: invalid id %q", id)
		}
		ctrl.Move(ctx, n, entities.KanbanColumn(strings.ToUpper(strings.TrimSpace(col))))
	}

	if f.patch != "" {
		var req pendenciaDTO.UpdatePendenciaRequest
		if err := json.Unmarshal([]byte(f.patch), &req); err != nil {
			return fmt.Errorf("-patch: %w", err)
		}
		id := f.editID
		if id == 0 {
			id = int64(req.ID)
		}
		ctrl.Edit(ctx, id, req.Patch())
	}

	if f.create != "" {
		var req pendenciaDTO.CreatePendenciaRequest
		if err := json.Unmarshal([]byte(f.create), &req); err != nil {
			return fmt.Errorf("-create: %w", err)
		}
		if created, _ := ctrl.Create(ctx, req.Draft()); created != nil {
			fmt.Fprintf(os.Stdout, "✅ Pendência #%d criada\n", created.ID)
		}
	}
	return nil
}

// watch re-renders on every change until interrupted. SIGHUP forces a refresh.
func watch(ctx context.Context, ctrl *board.Controller, logger *zap.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	go func() {
		if err := ctrl.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("board.run.stopped", zap.Error(err))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			ctrl.Trigger()
		case n := <-ctrl.Notices():
			renderNotice(os.Stderr, n)
		case <-ctrl.Changes():
			fmt.Fprint(os.Stdout, "\033[H\033[2J")
			render(os.Stdout, ctrl.Board(), time.Now())
		}
	}
}

func drainNotices(ctrl *board.Controller) {
	for {
		select {
		case n := <-ctrl.Notices():
			renderNotice(os.Stderr, n)
		default:
			return
		}
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	return cfg.Build()
}
