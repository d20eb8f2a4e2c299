package memory

import (
	"context"
	"fmt"

	"chatdoc-be/internal/repository/contract"
	"chatdoc-be/internal/repository/unitofwork"
)

type UnitOfWork struct {
	store *Store
	tx    *tables
}

var _ unitofwork.UnitOfWork = (*UnitOfWork)(nil)

func NewUnitOfWork(store *Store) *UnitOfWork {
	return &UnitOfWork{store: store}
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	u.store.writeMu.Lock()
	u.tx = u.store.snapshot().clone()
	return nil
}

func (u *UnitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	u.store.publish(u.tx)
	u.tx = nil
	u.store.writeMu.Unlock()
	return nil
}

func (u *UnitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}
	u.tx = nil
	u.store.writeMu.Unlock()
	return nil
}

func (u *UnitOfWork) read() *tables {
	if u.tx != nil {
		return u.tx
	}
	return u.store.snapshot()
}

// write runs fn against the transaction, or directly against the committed
// tables under the writer lock when no transaction is open.
func (u *UnitOfWork) write(fn func(t *tables) error) error {
	if u.tx != nil {
		return fn(u.tx)
	}
	u.store.writeMu.Lock()
	defer u.store.writeMu.Unlock()
	return fn(u.store.snapshot())
}

func (u *UnitOfWork) UserRepository() contract.UserRepository {
	return &userRepository{uow: u}
}

func (u *UnitOfWork) DocumentRepository() contract.DocumentRepository {
	return &documentRepository{uow: u}
}

func (u *UnitOfWork) ChunkRepository() contract.ChunkRepository {
	return &chunkRepository{uow: u}
}

func (u *UnitOfWork) ConversationRepository() contract.ConversationRepository {
	return &conversationRepository{uow: u}
}

type RepositoryFactory struct {
	store *Store
}

func NewRepositoryFactory(store *Store) unitofwork.RepositoryFactory {
	return &RepositoryFactory{store: store}
}

func (f *RepositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return NewUnitOfWork(f.store)
}
