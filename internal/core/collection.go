package core

// Collection is the whole ledger: every transaction plus the reference data
// they point at.
type Collection struct {
	Transactions      []Transaction
	IncomeCategories  []Category
	ExpenseCategories []Category
	Banks             []Bank
}

// DefaultCollection is an empty ledger with the seed categories and banks.
func DefaultCollection() Collection {
	return Collection{
		Transactions:      []Transaction{},
		IncomeCategories:  DefaultIncomeCategories(),
		ExpenseCategories: DefaultExpenseCategories(),
		Banks:             DefaultBanks(),
	}
}

// Clone copies every slice so the result shares no memory with c.
func (c Collection) Clone() Collection {
	return Collection{
		Transactions:      append([]Transaction{}, c.Transactions...),
		IncomeCategories:  append([]Category{}, c.IncomeCategories...),
		ExpenseCategories: append([]Category{}, c.ExpenseCategories...),
		Banks:             append([]Bank{}, c.Banks...),
	}
}

// Categories returns the category set for typ.
func (c Collection) Categories(typ TransactionType) []Category {
	if typ == Income {
		return c.IncomeCategories
	}
	return c.ExpenseCategories
}

// CategoryLabel resolves value within the set for typ.
func (c Collection) CategoryLabel(typ TransactionType, value string) (string, bool) {
	for _, cat := range c.Categories(typ) {
		if cat.Value == value {
			return cat.Label, true
		}
	}
	return "", false
}

// BankName resolves a bank id.
func (c Collection) BankName(id string) (string, bool) {
	for _, b := range c.Banks {
		if b.ID == id {
			return b.Name, true
		}
	}
	return "", false
}
