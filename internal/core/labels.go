package core

// Labels holds the display strings used by exports and reports.
type Labels struct {
	Income  string
	Expense string
	Cash    string
	Online  string
	Sources map[Source]string
}

// DefaultLabels returns English labels.
func DefaultLabels() Labels {
	return Labels{
		Income:  "Income",
		Expense: "Expense",
		Cash:    "Cash",
		Online:  "Online",
		Sources: map[Source]string{
			SourceA:  "Source A",
			SourceB:  "Source B",
			Personal: "Personal",
		},
	}
}

func (l Labels) Type(t TransactionType) string {
	if t == Income {
		return l.Income
	}
	return l.Expense
}

func (l Labels) PaymentMethod(p PaymentMethod) string {
	if p == Online {
		return l.Online
	}
	return l.Cash
}

// Source falls back to the Personal label for unknown tags.
func (l Labels) Source(s Source) string {
	if v, ok := l.Sources[s.Effective()]; ok {
		return v
	}
	return l.Sources[Personal]
}
