package store

import (
	"context"
	"fmt"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

func categoryKey(typ core.TransactionType) storage.Key {
	if typ == core.Income {
		return storage.KeyIncomeCategories
	}
	return storage.KeyExpenseCategories
}

func (s *Store) categoriesLocked(typ core.TransactionType) *[]core.Category {
	if typ == core.Income {
		return &s.data.IncomeCategories
	}
	return &s.data.ExpenseCategories
}

// AddCategory creates a category in the set for typ. Its value is derived
// from the label and unique within that set.
func (s *Store) AddCategory(ctx context.Context, typ core.TransactionType, label, icon string) (core.Category, error) {
	if !typ.Valid() {
		return core.Category{}, core.ErrInvalidType
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.categoriesLocked(typ)
	value, err := core.GenerateKey(label, s.now(), func(v string) bool {
		for _, c := range *set {
			if c.Value == v {
				return true
			}
		}
		return false
	})
	if err != nil {
		s.rejected(ctx, log.OpCreate, err)
		return core.Category{}, err
	}

	c := core.Category{Value: value, Label: strings.TrimSpace(label), Icon: icon}
	*set = append(*set, c)
	s.commit(ctx, log.OpCreate, []string{value}, categoryKey(typ))

	s.logger.InfoContext(ctx, "Category added", log.FieldCategory, value, "type", typ)
	return c, nil
}

// DeleteCategory removes value from the set for typ. It fails with
// ErrCategoryInUse while any transaction carries that value; a missing value
// is a no-op.
func (s *Store) DeleteCategory(ctx context.Context, typ core.TransactionType, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.data.Transactions {
		if t.Category == value {
			err := fmt.Errorf("%w: %s", ErrCategoryInUse, value)
			s.rejected(ctx, log.OpDelete, err)
			return err
		}
	}

	set := s.categoriesLocked(typ)
	for i, c := range *set {
		if c.Value != value {
			continue
		}
		*set = append((*set)[:i:i], (*set)[i+1:]...)
		s.commit(ctx, log.OpDelete, []string{value}, categoryKey(typ))
		s.logger.InfoContext(ctx, "Category deleted", log.FieldCategory, value, "type", typ)
		return nil
	}
	return nil
}

// AddBank creates a bank whose id is derived from name.
func (s *Store) AddBank(ctx context.Context, name string) (core.Bank, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := core.GenerateKey(name, s.now(), func(v string) bool {
		_, ok := s.data.BankName(v)
		return ok
	})
	if err != nil {
		s.rejected(ctx, log.OpCreate, err)
		return core.Bank{}, err
	}

	b := core.Bank{ID: id, Name: strings.TrimSpace(name)}
	s.data.Banks = append(s.data.Banks, b)
	s.commit(ctx, log.OpCreate, []string{id}, storage.KeyBanks)

	s.logger.InfoContext(ctx, "Bank added", log.FieldBank, id)
	return b, nil
}

// DeleteBank removes id. It fails with ErrBankInUse while any transaction
// references it; a missing id is a no-op.
func (s *Store) DeleteBank(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.data.Transactions {
		if t.Bank == id {
			err := fmt.Errorf("%w: %s", ErrBankInUse, id)
			s.rejected(ctx, log.OpDelete, err)
			return err
		}
	}

	for i, b := range s.data.Banks {
		if b.ID != id {
			continue
		}
		s.data.Banks = append(s.data.Banks[:i:i], s.data.Banks[i+1:]...)
		s.commit(ctx, log.OpDelete, []string{id}, storage.KeyBanks)
		s.logger.InfoContext(ctx, "Bank deleted", log.FieldBank, id)
		return nil
	}
	return nil
}
