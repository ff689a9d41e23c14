// Package directory holds the shop's customers, vendors and staff.
package directory

import (
	"time"

	"github.com/odyssey-erp/shopledger/internal/ledger"
	"github.com/odyssey-erp/shopledger/internal/money"
)

// Customer buys at the counter, over WhatsApp or through the print shop.
type Customer struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Mobile        string      `json:"mobile"`
	Address       string      `json:"address,omitempty"`
	CreditBalance money.Money `json:"credit_balance"`
}

// Counterparty is the ledger view of the customer.
func (c Customer) Counterparty() ledger.Counterparty {
	return ledger.Counterparty{Type: ledger.PartyCustomer, ID: c.ID, Name: c.Name, Phone: c.Mobile}
}

// Vendor supplies stock.
type Vendor struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Company        string      `json:"company"`
	Mobile         string      `json:"mobile"`
	Address        string      `json:"address,omitempty"`
	TotalPurchases money.Money `json:"total_purchases"`
	PendingPayment money.Money `json:"pending_payment"`
}

// Counterparty is the ledger view of the vendor.
func (v Vendor) Counterparty() ledger.Counterparty {
	return ledger.Counterparty{Type: ledger.PartyVendor, ID: v.ID, Name: v.Name, Phone: v.Mobile}
}

// Staff is a salaried employee.
type Staff struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Role          string      `json:"role"`
	Department    string      `json:"department"`
	MonthlySalary money.Money `json:"monthly_salary"`
	JoinDate      time.Time   `json:"join_date"`
	Phone         string      `json:"phone,omitempty"`
}

// Counterparty is the ledger view of the staff member.
func (s Staff) Counterparty() ledger.Counterparty {
	return ledger.Counterparty{Type: ledger.PartyStaff, ID: s.ID, Name: s.Name, Phone: s.Phone}
}

// CustomerInput registers a customer.
type CustomerInput struct {
	Name    string `json:"name" validate:"required,max=120"`
	Mobile  string `json:"mobile" validate:"omitempty,numeric,len=10"`
	Address string `json:"address" validate:"max=240"`
}

// VendorInput registers a vendor.
type VendorInput struct {
	Name    string `json:"name" validate:"required,max=120"`
	Company string `json:"company" validate:"max=120"`
	Mobile  string `json:"mobile" validate:"omitempty,numeric,len=10"`
	Address string `json:"address" validate:"max=240"`
}

// StaffInput registers a staff member.
type StaffInput struct {
	Name          string      `json:"name" validate:"required,max=120"`
	Role          string      `json:"role" validate:"required,max=80"`
	Department    string      `json:"department" validate:"omitempty,oneof=Retail Production"`
	MonthlySalary money.Money `json:"monthly_salary" validate:"gt=0"`
	Phone         string      `json:"phone" validate:"omitempty,numeric,len=10"`
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SeedCustomers is the opening customer list.
func SeedCustomers() []Customer {
	return []Customer{
		{ID: "1", Name: "Lakshmi Devi", Mobile: "9876543210", Address: "123 Main Street, Hyderabad"},
		{ID: "2", Name: "Priya Sharma", Mobile: "9876543211", Address: "456 Park Avenue, Secunderabad", CreditBalance: money.Rupees(8200)},
		{ID: "3", Name: "Anjali Reddy", Mobile: "9876543212"},
		{ID: "4", Name: "Meera Nair", Mobile: "9876543213", CreditBalance: money.Rupees(15000)},
		{ID: "5", Name: "Walk-in Customer"},
	}
}

// SeedVendors is the opening vendor list.
func SeedVendors() []Vendor {
	return []Vendor{
		{ID: "1", Name: "Rajesh Textiles", Company: "Rajesh Traders Pvt Ltd", Mobile: "9876543220", Address: "Surat, Gujarat", TotalPurchases: money.Rupees(450000), PendingPayment: money.Rupees(75000)},
		{ID: "2", Name: "Krishna Silks", Company: "Krishna Silk House", Mobile: "9876543221", Address: "Kanchipuram, Tamil Nadu", TotalPurchases: money.Rupees(890000)},
		{ID: "3", Name: "Banarasi Weavers", Company: "Banarasi Handloom Co.", Mobile: "9876543222", Address: "Varanasi, UP", TotalPurchases: money.Rupees(320000), PendingPayment: money.Rupees(45000)},
		{ID: "4", Name: "Cotton Kings", Company: "CK Fabrics", Mobile: "9876543223", Address: "Ahmedabad, Gujarat", TotalPurchases: money.Rupees(560000)},
	}
}

// SeedStaff is the opening staff list.
func SeedStaff() []Staff {
	return []Staff{
		{ID: "1", Name: "Rajesh Kumar", Role: "Store Manager", Department: "Retail", MonthlySalary: money.Rupees(25000), JoinDate: date(2022, time.January, 15), Phone: "9876543210"},
		{ID: "2", Name: "Sunita Devi", Role: "Sales Associate", Department: "Retail", MonthlySalary: money.Rupees(15000), JoinDate: date(2022, time.June, 1), Phone: "9876543211"},
		{ID: "3", Name: "Venkat Rao", Role: "Block Printer", Department: "Production", MonthlySalary: money.Rupees(18000), JoinDate: date(2021, time.March, 10), Phone: "9876543212"},
		{ID: "4", Name: "Lakshmi Bai", Role: "Dye Specialist", Department: "Production", MonthlySalary: money.Rupees(20000), JoinDate: date(2020, time.August, 20), Phone: "9876543213"},
		{ID: "5", Name: "Ramu", Role: "Helper", Department: "Production", MonthlySalary: money.Rupees(12000), JoinDate: date(2023, time.January, 1), Phone: "9876543214"},
	}
}
