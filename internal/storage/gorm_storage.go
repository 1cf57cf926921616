package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rotisserie/eris"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type GormStorage struct {
	db *gorm.DB
}

func NewGormStorage(driver, dsn string) (*GormStorage, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		if dsn == "" {
			dsn = "tagihanpln.db"
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, eris.Errorf("unsupported driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", driver)
	}
	return &GormStorage{db: db}, nil
}

func (s *GormStorage) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&Customer{}, &CustomerBill{}, &Transaction{}, &JobRun{})
}

func orderedBills(db *gorm.DB) *gorm.DB {
	return db.Order("id asc")
}

// Customers

func (s *GormStorage) ListCustomers(ctx context.Context) ([]Customer, error) {
	var customers []Customer
	result := s.db.WithContext(ctx).Preload("Bills", orderedBills).Order("created_at desc").Find(&customers)
	return customers, result.Error
}

func (s *GormStorage) GetCustomer(ctx context.Context, number string) (*Customer, error) {
	var c Customer
	result := s.db.WithContext(ctx).Preload("Bills", orderedBills).First(&c, "customer_number = ?", number)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &c, nil
}

func (s *GormStorage) mustGet(ctx context.Context, number string) (*Customer, error) {
	c, err := s.GetCustomer(ctx, number)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *GormStorage) CreateCustomer(ctx context.Context, c Customer) (*Customer, error) {
	existing, err := s.GetCustomer(ctx, c.Number)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrExists
	}
	c = withDefaults(c)
	for i := range c.Bills {
		c.Bills[i].ID = 0
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}
	return s.mustGet(ctx, c.Number)
}

func (s *GormStorage) UpdateCustomer(ctx context.Context, number string, u CustomerUpdate) (*Customer, error) {
	c, err := s.mustGet(ctx, number)
	if err != nil {
		return nil, err
	}
	u.apply(c)
	err = s.db.WithContext(ctx).Model(&Customer{Number: number}).Updates(map[string]any{
		"customer_name": c.Name,
		"tariff_power":  c.TariffPower,
		"stand_meter":   c.StandMeter,
		"admin_fee":     c.AdminFee,
	}).Error
	if err != nil {
		return nil, err
	}
	return s.mustGet(ctx, number)
}

func (s *GormStorage) DeleteCustomer(ctx context.Context, number string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_number = ?", number).Delete(&CustomerBill{}).Error; err != nil {
			return err
		}
		result := tx.Where("customer_number = ?", number).Delete(&Customer{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Bills

func (s *GormStorage) AddBill(ctx context.Context, number string, b CustomerBill) (*Customer, error) {
	if _, err := s.mustGet(ctx, number); err != nil {
		return nil, err
	}
	b.ID = 0
	b.CustomerNumber = number
	if err := s.db.WithContext(ctx).Create(&b).Error; err != nil {
		return nil, err
	}
	return s.mustGet(ctx, number)
}

func (s *GormStorage) MarkBillPaid(ctx context.Context, number string, index int) (*Customer, error) {
	c, err := s.mustGet(ctx, number)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(c.Bills) {
		return nil, ErrNotFound
	}
	err = s.db.WithContext(ctx).Model(&CustomerBill{}).
		Where("id = ?", c.Bills[index].ID).
		Update("is_paid", true).Error
	if err != nil {
		return nil, err
	}
	return s.mustGet(ctx, number)
}

// Transactions

func (s *GormStorage) ListTransactions(ctx context.Context) ([]Transaction, error) {
	var txs []Transaction
	result := s.db.WithContext(ctx).Order("seq desc").Find(&txs)
	return txs, result.Error
}

func (s *GormStorage) CreateTransaction(ctx context.Context, t Transaction) (*Transaction, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int64
		if err := tx.Model(&Transaction{}).Select("COALESCE(MAX(seq), 0)").Scan(&last).Error; err != nil {
			return err
		}
		var err error
		if t, err = t.prepare(last+1, time.Now()); err != nil {
			return err
		}
		return tx.Create(&t).Error
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *GormStorage) DeleteTransaction(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Transaction{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Scheduled jobs

func (s *GormStorage) RecordJobRun(ctx context.Context, name string, started time.Time, dur time.Duration, runErr error) error {
	run := JobRun{
		Name:           name,
		LastRunAt:      started,
		LastDurationMs: dur.Milliseconds(),
		LastSuccess:    runErr == nil,
	}
	if runErr != nil {
		run.LastError = runErr.Error()
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		UpdateAll: true,
	}).Create(&run).Error
}

// Close & Ping

func (s *GormStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStorage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Stats exposes the connection pool counters.
func (s *GormStorage) Stats() (sql.DBStats, error) {
	sqlDB, err := s.db.DB()
	if err != nil {
		return sql.DBStats{}, err
	}
	return sqlDB.Stats(), nil
}
