package directory

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// RoomRow and MemberRow mirror the rooms/players tables.
type RoomRow struct {
	Code      string `gorm:"primaryKey;size:6"`
	HostID    string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (RoomRow) TableName() string { return "rooms" }

type MemberRow struct {
	SessionID string `gorm:"primaryKey"`
	RoomCode  string `gorm:"index;not null"`
	Name      string `gorm:"size:64;not null"`
	IsHost    bool   `gorm:"not null;default:false"`
	IsReady   bool   `gorm:"not null;default:false"`
	JoinedAt  time.Time
	UpdatedAt time.Time
}

func (MemberRow) TableName() string { return "room_members" }

type GormDirectory struct {
	db *gorm.DB
}

func OpenGorm(dsn string) (*GormDirectory, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&RoomRow{}, &MemberRow{}); err != nil {
		return nil, err
	}
	return &GormDirectory{db: db}, nil
}

func (d *GormDirectory) CreateRoom(ctx context.Context, code string, host Member) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing RoomRow
		err := tx.First(&existing, "code = ?", code).Error
		if err == nil {
			return ErrRoomExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := tx.Create(&RoomRow{Code: code, HostID: host.SessionID}).Error; err != nil {
			return err
		}
		host.RoomCode = code
		host.IsHost = true
		return tx.Create(rowFromMember(host)).Error
	})
}

func (d *GormDirectory) JoinRoom(ctx context.Context, code string, m Member) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&RoomRow{}, "code = ?", code).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return err
		}
		var existing MemberRow
		err := tx.First(&existing, "session_id = ?", m.SessionID).Error
		if err == nil {
			existing.Name = m.Name
			existing.RoomCode = code
			return tx.Save(&existing).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		m.RoomCode = code
		return tx.Create(rowFromMember(m)).Error
	})
}

func (d *GormDirectory) Leave(ctx context.Context, code, sessionID string) error {
	res := d.db.WithContext(ctx).
		Where("room_code = ? AND session_id = ?", code, sessionID).
		Delete(&MemberRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (d *GormDirectory) ToggleReady(ctx context.Context, code, sessionID string) (bool, error) {
	var ready bool
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row MemberRow
		if err := tx.First(&row, "room_code = ? AND session_id = ?", code, sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMemberNotFound
			}
			return err
		}
		row.IsReady = !row.IsReady
		ready = row.IsReady
		return tx.Save(&row).Error
	})
	return ready, err
}

func (d *GormDirectory) RoomExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&RoomRow{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}

func (d *GormDirectory) Members(ctx context.Context, code string) ([]Member, error) {
	var rows []MemberRow
	err := d.db.WithContext(ctx).
		Where("room_code = ?", code).
		Order("joined_at asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	members := make([]Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, Member{
			SessionID: row.SessionID,
			RoomCode:  row.RoomCode,
			Name:      row.Name,
			IsHost:    row.IsHost,
			IsReady:   row.IsReady,
		})
	}
	return members, nil
}

func (d *GormDirectory) DeleteRoom(ctx context.Context, code string) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_code = ?", code).Delete(&MemberRow{}).Error; err != nil {
			return err
		}
		return tx.Where("code = ?", code).Delete(&RoomRow{}).Error
	})
}

func rowFromMember(m Member) *MemberRow {
	return &MemberRow{
		SessionID: m.SessionID,
		RoomCode:  m.RoomCode,
		Name:      m.Name,
		IsHost:    m.IsHost,
		IsReady:   m.IsReady,
		JoinedAt:  time.Now(),
	}
}
