package models

import "time"

type Role struct {
	ID   int    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}
type Learner struct {
	ID           string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	Roles        []Role    `gorm:"many2many:learner_roles" json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
type Session struct {
	JTI       string     `gorm:"primaryKey;size:64" json:"jti"`
	LearnerID string     `gorm:"type:uuid;index;not null" json:"learner_id"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Run is one history entry: an operation a learner executed with its inputs,
// output and trace.
type Run struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	LearnerID *string   `gorm:"type:uuid;index" json:"learner_id,omitempty"`
	Topic     string    `gorm:"not null;index" json:"topic"`
	Operation string    `gorm:"not null" json:"operation"`
	Params    JSONB     `gorm:"type:jsonb;default:'{}'::jsonb" json:"params"`
	Result    JSONB     `gorm:"type:jsonb;default:'{}'::jsonb" json:"result"`
	Trace     JSONB     `gorm:"type:jsonb;default:'[]'::jsonb" json:"trace"`
	Status    string    `gorm:"not null" json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// SPNSetting persists a learner's last successful SPN setup.
type SPNSetting struct {
	LearnerID string    `gorm:"type:uuid;primaryKey" json:"learner_id"`
	Rounds    int       `gorm:"not null" json:"rounds"`
	SBoxHex   string    `gorm:"column:sbox_hex;size:16;not null" json:"sbox"`
	Key       string    `gorm:"size:16;not null" json:"key"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SPNSetting) TableName() string { return "spn_settings" }

// Run statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)
