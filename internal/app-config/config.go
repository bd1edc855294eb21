package appconfig

import (
	"fmt"
	"strings"

	"github.com/lockstep-network/lockstep/internal/core/application"
	"github.com/lockstep-network/lockstep/internal/core/ports"
	staticauthorizer "github.com/lockstep-network/lockstep/internal/infrastructure/authorizer/static"
	systemclock "github.com/lockstep-network/lockstep/internal/infrastructure/clock"
	"github.com/lockstep-network/lockstep/internal/infrastructure/db"
	inmemoryledger "github.com/lockstep-network/lockstep/internal/infrastructure/ledger/inmemory"
	brokerpublisher "github.com/lockstep-network/lockstep/internal/infrastructure/publisher/broker"
	timescheduler "github.com/lockstep-network/lockstep/internal/infrastructure/scheduler/gocron"
	log "github.com/sirupsen/logrus"
)

var (
	supportedDbs = supportedType{
		"badger": {},
	}
	supportedLedgers = supportedType{
		"inmemory": {},
	}
	supportedSchedulers = supportedType{
		"gocron": {},
	}
)

type Config struct {
	DbType        string
	DbDir         string
	LedgerType    string
	SchedulerType string

	// AuthRules maps a party to the actions it may perform. Empty means the
	// node runs open, every caller is allowed everything.
	AuthRules map[string][]ports.Action

	repo       ports.RepoManager
	ledger     ports.AssetLedger
	scheduler  ports.SchedulerService
	authorizer ports.Authorizer
	publisher  ports.EventPublisher
	clock      ports.Clock
	svc        application.Service
}

func (c *Config) Validate() error {
	if !supportedDbs.supports(c.DbType) {
		return fmt.Errorf("db type not supported, please select one of: %s", supportedDbs)
	}
	if !supportedLedgers.supports(c.LedgerType) {
		return fmt.Errorf("ledger type not supported, please select one of: %s", supportedLedgers)
	}
	if !supportedSchedulers.supports(c.SchedulerType) {
		return fmt.Errorf("scheduler type not supported, please select one of: %s", supportedSchedulers)
	}
	if err := c.repoManager(); err != nil {
		return err
	}
	if err := c.ledgerService(); err != nil {
		return err
	}
	if err := c.schedulerService(); err != nil {
		return err
	}
	c.authorizer = staticauthorizer.NewAuthorizer(c.AuthRules)
	c.publisher = brokerpublisher.NewPublisher()
	c.clock = systemclock.NewClock()
	return nil
}

func (c *Config) AppService() (application.Service, error) {
	if c.svc == nil {
		if err := c.appService(); err != nil {
			return nil, err
		}
	}
	return c.svc, nil
}

func (c *Config) Ledger() ports.AssetLedger {
	return c.ledger
}

func (c *Config) Publisher() ports.EventPublisher {
	return c.publisher
}

func (c *Config) repoManager() error {
	var dbConfig []interface{}
	switch c.DbType {
	case "badger":
		dbConfig = []interface{}{c.DbDir, log.New()}
	default:
		return fmt.Errorf("unknown db type")
	}

	svc, err := db.NewService(db.ServiceConfig{
		DbType:   c.DbType,
		DbConfig: dbConfig,
	})
	if err != nil {
		return err
	}

	c.repo = svc
	return nil
}

func (c *Config) ledgerService() error {
	switch c.LedgerType {
	case "inmemory":
		c.ledger = inmemoryledger.NewLedgerService()
	default:
		return fmt.Errorf("unknown ledger type")
	}
	return nil
}

func (c *Config) schedulerService() error {
	switch c.SchedulerType {
	case "gocron":
		c.scheduler = timescheduler.NewScheduler()
	default:
		return fmt.Errorf("unknown scheduler type")
	}
	return nil
}

func (c *Config) appService() error {
	svc, err := application.NewService(
		c.clock, c.ledger, c.repo, c.scheduler, c.authorizer, c.publisher,
	)
	if err != nil {
		return err
	}

	c.svc = svc
	return nil
}

type supportedType map[string]struct{}

func (t supportedType) String() string {
	types := make([]string, 0, len(t))
	for tt := range t {
		types = append(types, tt)
	}
	return strings.Join(types, " | ")
}

func (t supportedType) supports(typeStr string) bool {
	_, ok := t[typeStr]
	return ok
}
