package bizday

import "cloud.google.com/go/civil"

// CreditSettlementDays is the lag between a debit and its paired credit.
const CreditSettlementDays = 2

// ACHEffectiveDate returns d when it is a business day, otherwise the next one.
func (p *Policy) ACHEffectiveDate(d civil.Date) civil.Date {
	if p.IsBusinessDay(d) {
		return d
	}
	return p.NextBusinessDay(d)
}

// CreditEffectiveDate is the settlement date of the credit leg paired with a debit
// effective on debitDate.
func (p *Policy) CreditEffectiveDate(debitDate civil.Date) civil.Date {
	return p.AddBusinessDays(debitDate, CreditSettlementDays)
}

// ACHReleaseEffectiveDate maps the day a file is released to the effective date it
// carries: one business day after the release day (itself moved to a business day).
func (p *Policy) ACHReleaseEffectiveDate(release civil.Date) civil.Date {
	return p.AddBusinessDays(p.ACHEffectiveDate(release), 1)
}

func (p *Policy) IsValidEffectiveDate(d civil.Date) bool {
	return p.IsBusinessDay(d)
}

// NextValidEffectiveDate corrects a caller-supplied date to a business day.
func (p *Policy) NextValidEffectiveDate(d civil.Date) civil.Date {
	return p.ACHEffectiveDate(d)
}
