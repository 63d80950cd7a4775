package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client is a customer company.
type Client struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:120;not null"`
	Contact   string    `json:"contact" gorm:"size:120;not null"`
	Phone     string    `json:"phone" gorm:"size:40;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// Worker is an employee who can own deals and log attendance and production.
type Worker struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:120;not null"`
	Role      string    `json:"role" gorm:"size:120;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// Deal is an order placed by a client, optionally assigned to a worker.
type Deal struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	ClientID  uint            `json:"client_id" gorm:"not null;index:idx_deals_client"`
	WorkerID  *uint           `json:"worker_id" gorm:"index:idx_deals_worker"`
	OrderName string          `json:"order_name" gorm:"size:160;not null;default:''"`
	Details   *string         `json:"details" gorm:"type:text"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null;default:0"`
	Status    DealStatus      `json:"status" gorm:"type:varchar(20);not null;default:'new'"`
	CreatedAt time.Time       `json:"created_at"`

	// Relations, used only for foreign key constraints
	Client *Client `json:"-" gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
	Worker *Worker `json:"-" gorm:"foreignKey:WorkerID;constraint:OnDelete:SET NULL"`
}

// Attendance is one worker's status for one day.
type Attendance struct {
	ID            uint             `json:"id" gorm:"primaryKey"`
	WorkerID      uint             `json:"worker_id" gorm:"not null;uniqueIndex:uniq_worker_day,priority:1"`
	WorkDate      Date             `json:"work_date" gorm:"not null;uniqueIndex:uniq_worker_day,priority:2;index:idx_attendance_date"`
	Status        AttendanceStatus `json:"status" gorm:"type:varchar(20);not null;default:'present'"`
	OvertimeHours decimal.Decimal  `json:"overtime_hours" gorm:"type:decimal(4,2);not null;default:0"`
	CreatedAt     time.Time        `json:"created_at"`

	Worker *Worker `json:"-" gorm:"foreignKey:WorkerID;constraint:OnDelete:CASCADE"`
}

// TableName keeps the singular table name used by existing installations.
func (Attendance) TableName() string { return "attendance" }

// Production is a batch of products made by a worker on a day.
type Production struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	WorkerID     uint      `json:"worker_id" gorm:"not null;index:idx_productions_worker"`
	ProductName  string    `json:"product_name" gorm:"size:140;not null"`
	Quantity     int       `json:"quantity" gorm:"not null;default:0"`
	ProducedDate Date      `json:"produced_date" gorm:"not null;index:idx_productions_date"`
	CreatedAt    time.Time `json:"created_at"`

	Worker *Worker `json:"-" gorm:"foreignKey:WorkerID;constraint:OnDelete:CASCADE"`
}
