package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// TxManager выполняет функцию внутри одной транзакции. Вынесен в интерфейс,
// чтобы движок синхронизации можно было тестировать на in-memory хранилище
// без настоящей БД.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(exec SQLExecutor) error) error
}

type sqlTxManager struct {
	db *sql.DB
}

func NewSQLTxManager(db *sql.DB) TxManager {
	return &sqlTxManager{db: db}
}

func (m *sqlTxManager) RunInTx(ctx context.Context, fn func(exec SQLExecutor) error) (err error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("transaction error: %w (rollback also failed: %v)", err, rbErr)
			}
		} else {
			if cErr := tx.Commit(); cErr != nil {
				err = fmt.Errorf("failed to commit transaction: %w", cErr)
			}
		}
	}()

	err = fn(tx)
	return err
}
