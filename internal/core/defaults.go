package core

// Icon keys used by the default categories.
const (
	IconSalary    = "salary"
	IconBonus     = "bonus"
	IconInvest    = "investment"
	IconFood      = "food"
	IconTransport = "transport"
	IconShopping  = "shopping"
	IconBills     = "bills"
	IconHealth    = "health"
	IconFun       = "entertainment"
	IconEducation = "education"
	IconOther     = "other"
)

// DefaultIncomeCategories seeds a fresh ledger.
func DefaultIncomeCategories() []Category {
	return []Category{
		{Value: "salary", Label: "Salary", Icon: IconSalary},
		{Value: "bonus", Label: "Bonus", Icon: IconBonus},
		{Value: "investment", Label: "Investment", Icon: IconInvest},
		{Value: "other_income", Label: "Other", Icon: IconOther},
	}
}

// DefaultExpenseCategories seeds a fresh ledger.
func DefaultExpenseCategories() []Category {
	return []Category{
		{Value: "food", Label: "Food", Icon: IconFood},
		{Value: "transport", Label: "Transport", Icon: IconTransport},
		{Value: "shopping", Label: "Shopping", Icon: IconShopping},
		{Value: "bills", Label: "Bills", Icon: IconBills},
		{Value: "health", Label: "Health", Icon: IconHealth},
		{Value: "entertainment", Label: "Entertainment", Icon: IconFun},
		{Value: "education", Label: "Education", Icon: IconEducation},
		{Value: "other_expense", Label: "Other", Icon: IconOther},
	}
}

// DefaultBanks seeds a fresh ledger.
func DefaultBanks() []Bank {
	return []Bank{
		{ID: "kbank", Name: "Kasikornbank"},
		{ID: "scb", Name: "Siam Commercial Bank"},
		{ID: "bbl", Name: "Bangkok Bank"},
		{ID: "ktb", Name: "Krungthai Bank"},
		{ID: "bay", Name: "Bank of Ayudhya"},
	}
}
