package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/questx-lab/persuade-agent/config"
	"github.com/questx-lab/persuade-agent/internal/client"
	"github.com/questx-lab/persuade-agent/internal/domain"
	"github.com/questx-lab/persuade-agent/internal/domain/challenge"
	"github.com/questx-lab/persuade-agent/internal/repository"
	"github.com/questx-lab/persuade-agent/internal/repository/migration"
	"github.com/questx-lab/persuade-agent/pkg/api/farcaster"
	"github.com/questx-lab/persuade-agent/pkg/api/llm"
	"github.com/questx-lab/persuade-agent/pkg/blockchain/eth"
	"github.com/questx-lab/persuade-agent/pkg/errorx"
	"github.com/questx-lab/persuade-agent/pkg/kafka"
	"github.com/questx-lab/persuade-agent/pkg/logger"
	"github.com/questx-lab/persuade-agent/pkg/pubsub"
	"github.com/questx-lab/persuade-agent/pkg/storage"
	"github.com/questx-lab/persuade-agent/pkg/xcontext"
	"github.com/questx-lab/persuade-agent/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	app *cli.App
	ctx context.Context

	addressCache client.AddressCache
	publisher    pubsub.Publisher
	storage      storage.Storage
	ethClient    eth.EthClient

	challengeRepo repository.ChallengeRepository
	winnerRepo    repository.WinnerRepository

	socialCaller   client.SocialCaller
	textCaller     client.TextGenerationCaller
	identityCaller client.IdentityCaller
	transferCaller client.TokenTransferCaller

	challengeDomain domain.ChallengeDomain
}

func (s *srv) loadConfig(cctx *cli.Context) error {
	if err := godotenv.Load(cctx.String("env-file")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("cannot load env file: %w", err)
	}

	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}

	s.ctx = context.Background()
	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(cfg.LogLevel))
	s.ctx = xcontext.WithHTTPClient(s.ctx, &http.Client{Timeout: cfg.HTTPClient.Timeout})
	return nil
}

// load prepares everything a challenge command needs.
func (s *srv) load() error {
	if err := s.loadDatabase(); err != nil {
		return err
	}

	if err := s.loadAddressCache(); err != nil {
		return err
	}

	if err := s.loadPublisher(); err != nil {
		return err
	}

	if err := s.loadStorage(); err != nil {
		return err
	}

	s.loadRepos()

	if err := s.loadEndpoints(); err != nil {
		return err
	}

	return s.loadDomains()
}

func (s *srv) newDatabase() (*gorm.DB, error) {
	cfg := xcontext.Configs(s.ctx).Database

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.New(mysql.Config{
			DSN:                       cfg.ConnectionString(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		})
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, nil
	}

	return gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
}

func (s *srv) loadDatabase() error {
	db, err := s.newDatabase()
	if err != nil {
		return fmt.Errorf("cannot connect to database: %w", err)
	}

	if db == nil {
		return nil
	}

	if err := migration.DoMigration(db); err != nil {
		return fmt.Errorf("cannot migrate database: %w", err)
	}

	s.ctx = xcontext.WithDB(s.ctx, db)
	return nil
}

func (s *srv) loadAddressCache() error {
	cfg := xcontext.Configs(s.ctx).Redis
	if cfg.Addr == "" {
		s.addressCache = client.NewMemoryAddressCache()
		return nil
	}

	redisClient, err := xredis.NewClient(s.ctx)
	if err != nil {
		return fmt.Errorf("cannot connect to redis: %w", err)
	}

	s.addressCache = client.NewRedisAddressCache(redisClient, cfg.AddressTTL)
	return nil
}

func (s *srv) loadPublisher() error {
	cfg := xcontext.Configs(s.ctx).Kafka
	if cfg.Addr == "" {
		s.publisher = pubsub.NopPublisher{}
		return nil
	}

	publisher, err := kafka.NewPublisher(cfg.ClientID, strings.Split(cfg.Addr, ","))
	if err != nil {
		return fmt.Errorf("cannot connect to kafka: %w", err)
	}

	s.publisher = publisher
	return nil
}

func (s *srv) loadStorage() error {
	cfg := xcontext.Configs(s.ctx).Storage
	if cfg.Bucket == "" {
		return nil
	}

	s3Storage, err := storage.NewS3Storage(cfg)
	if err != nil {
		return fmt.Errorf("cannot create storage: %w", err)
	}

	s.storage = s3Storage
	return nil
}

func (s *srv) loadRepos() {
	cfg := xcontext.Configs(s.ctx).Challenge
	s.challengeRepo = repository.NewChallengeRepository(cfg.SnapshotDir)
	s.winnerRepo = repository.NewWinnerRepository(cfg.WinnerFile)
}

func (s *srv) loadEndpoints() error {
	cfg := xcontext.Configs(s.ctx)

	farcasterEndpoint := farcaster.New(cfg.Farcaster)
	s.socialCaller = client.NewFarcasterCaller(farcasterEndpoint)
	s.identityCaller = client.NewIdentityCaller(farcasterEndpoint, s.addressCache)

	generator, err := llm.New(cfg.LLM)
	if err != nil {
		return err
	}
	s.textCaller = generator

	ethClient := eth.NewEthClients(cfg.Eth)
	s.ethClient = ethClient

	transferor, err := eth.NewTransferor(cfg.Eth, ethClient)
	if err != nil {
		xcontext.Logger(s.ctx).Warnf("Rewards cannot be paid: %v", err)
		s.transferCaller = unavailableTransferor{err: err}
		return nil
	}

	xcontext.Logger(s.ctx).Infof("Rewards are paid from %s", transferor.From().Hex())
	s.transferCaller = transferor
	return nil
}

func (s *srv) loadDomains() error {
	cfg := xcontext.Configs(s.ctx)

	events, err := challenge.NewEventPublisher(s.publisher, cfg.Kafka.Topic)
	if err != nil {
		return err
	}

	var archiver *challenge.Archiver
	if s.storage != nil {
		archiver = challenge.NewArchiver(s.storage, cfg.Storage)
	}

	evaluator := challenge.NewEvaluator(s.textCaller, cfg.LLM.Provider)
	disburser := challenge.NewDisburser(
		s.challengeRepo,
		s.winnerRepo,
		s.identityCaller,
		s.transferCaller,
		s.socialCaller,
		events,
		archiver,
		cfg.Challenge.TokenSymbol,
	)

	s.challengeDomain = domain.NewChallengeDomain(
		s.challengeRepo,
		s.socialCaller,
		evaluator,
		disburser,
		events,
		domain.KeywordReplyPredicate(cfg.Challenge.ReplyKeywords),
	)
	return nil
}

// unavailableTransferor fails every transfer. It stands in when the payout
// account is not configured so that the read-only commands still work.
type unavailableTransferor struct {
	err error
}

func (t unavailableTransferor) Transfer(context.Context, string, string) (string, error) {
	return "", errorx.New(errorx.InvalidConfig, "Transfer is unavailable: %v", t.err)
}
