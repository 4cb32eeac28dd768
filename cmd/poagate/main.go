// Command poagate validates one power-of-attorney document from the command
// line: it admits the request through the quota gate, runs the validation
// pipeline, and prints the result as JSON.
//
// Wiring lives here; business logic lives in the internal services packages.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"poagate/internal/extraction"
	"poagate/internal/imagequality"
	"poagate/internal/platform/config"
	"poagate/internal/platform/logger"
	platformpg "poagate/internal/platform/postgres"
	platformredis "poagate/internal/platform/redis"
	quotametrics "poagate/internal/quota/metrics"
	quotamodels "poagate/internal/quota/models"
	quotaservice "poagate/internal/quota/service"
	quotamemory "poagate/internal/quota/store/memory"
	quotapg "poagate/internal/quota/store/postgres"
	quotaredis "poagate/internal/quota/store/redisstore"
	validationmetrics "poagate/internal/validation/metrics"
	"poagate/internal/validation/models"
	validationservice "poagate/internal/validation/service"
	id "poagate/pkg/domain"
	audit "poagate/pkg/platform/audit"
	"poagate/pkg/platform/audit/publisher"
	auditkafka "poagate/pkg/platform/audit/store/kafka"
	auditmemory "poagate/pkg/platform/audit/store/memory"
	"poagate/pkg/requestcontext"
)

// output is the CLI's JSON envelope.
type output struct {
	Result       *models.ValidationResult `json:"result"`
	ImageQuality *models.ImageQuality     `json:"image_quality,omitempty"`
	Quota        *quotamodels.State       `json:"quota,omitempty"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "poagate:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		inputPath = flag.String("input", "", "path to the document (pre-extracted text for -kind pdf, image file for -kind scanned_image)")
		kindFlag  = flag.String("kind", string(models.KindPDF), "document kind: pdf or scanned_image")
		userFlag  = flag.String("user", "", "user UUID for quota accounting (generated when empty)")
		skipQuota = flag.Bool("skip-quota", false, "bypass the quota gate")
	)
	flag.Parse()

	if *inputPath == "" {
		return errors.New("-input is required")
	}
	kind := models.DocumentKind(*kindFlag)
	if !kind.IsValid() {
		return fmt.Errorf("unknown document kind %q", *kindFlag)
	}

	userID := id.NewUserID()
	if *userFlag != "" {
		parsed, err := id.ParseUserID(*userFlag)
		if err != nil {
			return fmt.Errorf("invalid -user: %w", err)
		}
		userID = parsed
	}

	data, err := os.ReadFile(*inputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx := requestcontext.WithUserID(context.Background(), userID)

	sink, err := buildAuditSink(ctx, cfg, log)
	if err != nil {
		return err
	}
	pub := publisher.NewPublisher(sink, publisher.WithLogger(log))
	defer pub.Close()

	store, cleanup, err := buildQuotaStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	out := output{}

	if !*skipQuota {
		gate, err := quotaservice.New(store,
			quotaservice.WithLogger(log),
			quotaservice.WithAuditPublisher(pub),
			quotaservice.WithMetrics(quotametrics.New()),
		)
		if err != nil {
			return err
		}

		state, err := gate.CheckAndConsume(ctx, userID)
		var exceeded *quotamodels.QuotaExceededError
		if errors.As(err, &exceeded) {
			return fmt.Errorf("%s (upgrade for unlimited validations)", exceeded.Error())
		}
		if err != nil {
			return err
		}
		out.Quota = state
	}

	adapter, err := extraction.New(extraction.PlainTextEngine{}, extraction.WithLogger(log))
	if err != nil {
		return err
	}

	svc, err := validationservice.New(adapter,
		validationservice.WithLogger(log),
		validationservice.WithAuditPublisher(pub),
		validationservice.WithMetrics(validationmetrics.New()),
		validationservice.WithImageQualityAnalyzer(imagequality.New(imagequality.WithLogger(log))),
	)
	if err != nil {
		return err
	}

	outcome, err := svc.ValidateUpload(ctx, data, kind)
	if err != nil {
		return err
	}
	out.Result = outcome.Result
	out.ImageQuality = outcome.ImageQuality
	if outcome.AnalysisWarning {
		log.Warn("image quality analysis failed, validation ran without a quality record")
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Println(string(encoded))
	return nil
}

// buildAuditSink prefers Kafka when brokers are configured and falls back to
// the in-memory sink otherwise.
func buildAuditSink(ctx context.Context, cfg config.Config, log *slog.Logger) (audit.Sink, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return auditmemory.NewInMemoryStore(), nil
	}
	sink, err := auditkafka.New(ctx, cfg.KafkaBrokers, cfg.AuditTopic, auditkafka.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("connect audit sink: %w", err)
	}
	return sink, nil
}

// buildQuotaStore selects the quota backend from configuration.
func buildQuotaStore(ctx context.Context, cfg config.Config) (quotaservice.Store, func(), error) {
	switch cfg.QuotaStore {
	case "memory":
		return quotamemory.New(), func() {}, nil

	case "postgres":
		db, err := platformpg.Open(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		store := quotapg.New(db)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, func() { db.Close() }, nil

	case "redis":
		client, err := platformredis.New(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		if client == nil {
			return nil, nil, errors.New("POAGATE_REDIS_URL is required for the redis quota store")
		}
		return quotaredis.New(client.Client), func() { client.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown quota store %q", cfg.QuotaStore)
	}
}
