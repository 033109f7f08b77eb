package models

import (
	"math"
	"testing"
)

func TestUserProfile_Totals(t *testing.T) {
	p := &UserProfile{
		MonthlyIncome:    MonthlyIncome{Salary: 9000, Freelance: 1500, Other: 500},
		FixedExpenses:    map[string]float64{"rent": 3500, "utilities": 1000},
		VariableExpenses: map[string]float64{"food": 2000, "transport": 700},
		Debts: []Debt{
			{Name: "car loan", RemainingAmount: 12000},
			{Name: "credit card", RemainingAmount: 3000},
		},
	}

	if got := p.TotalIncome(); got != 11000 {
		t.Errorf("TotalIncome() = %v, want 11000", got)
	}
	if got := p.TotalFixedExpenses(); got != 4500 {
		t.Errorf("TotalFixedExpenses() = %v, want 4500", got)
	}
	if got := p.TotalVariableExpenses(); got != 2700 {
		t.Errorf("TotalVariableExpenses() = %v, want 2700", got)
	}
	if got := p.TotalExpenses(); got != 7200 {
		t.Errorf("TotalExpenses() = %v, want 7200", got)
	}
	if got := p.TotalDebt(); got != 15000 {
		t.Errorf("TotalDebt() = %v, want 15000", got)
	}
}

func TestUserProfile_SavingsRate(t *testing.T) {
	p := &UserProfile{
		MonthlyIncome: MonthlyIncome{Salary: 9000},
		FixedExpenses: map[string]float64{"all": 8200},
	}
	want := (9000.0 - 8200.0) / 9000.0
	if got := p.SavingsRate(); math.Abs(got-want) > 1e-9 {
		t.Errorf("SavingsRate() = %v, want %v", got, want)
	}
}

func TestUserProfile_SavingsRateZeroIncome(t *testing.T) {
	p := &UserProfile{FixedExpenses: map[string]float64{"rent": 3000}}
	if got := p.SavingsRate(); got != 0 {
		t.Errorf("SavingsRate() with zero income = %v, want 0", got)
	}
}

func TestUserProfile_SavingsRateNegative(t *testing.T) {
	p := &UserProfile{
		MonthlyIncome: MonthlyIncome{Salary: 5000},
		FixedExpenses: map[string]float64{"all": 6000},
	}
	if got := p.SavingsRate(); got >= 0 {
		t.Errorf("SavingsRate() overspending = %v, want negative", got)
	}
}

func TestUserProfile_GoalNames(t *testing.T) {
	p := &UserProfile{
		FinancialGoals: []FinancialGoal{
			{Name: "Emergency fund"},
			{Name: "Hajj savings"},
			{Name: "Apartment deposit"},
			{Name: "New laptop"},
		},
	}

	got := p.GoalNames(3)
	if len(got) != 3 {
		t.Fatalf("GoalNames(3) returned %d names", len(got))
	}
	if got[0] != "Emergency fund" || got[2] != "Apartment deposit" {
		t.Errorf("GoalNames(3) = %v", got)
	}

	if got := p.GoalNames(10); len(got) != 4 {
		t.Errorf("GoalNames(10) returned %d names, want all 4", len(got))
	}
	if got := (&UserProfile{}).GoalNames(3); len(got) != 0 {
		t.Errorf("GoalNames on empty profile = %v", got)
	}
}

func TestPlaceholderProfile(t *testing.T) {
	p := PlaceholderProfile("user-42")
	if p.UserID != "user-42" {
		t.Errorf("UserID = %q", p.UserID)
	}
	if !p.Unavailable {
		t.Error("placeholder profile must be marked unavailable")
	}
	if p.TotalIncome() != 0 || p.TotalDebt() != 0 {
		t.Error("placeholder profile must carry no financial data")
	}
}
