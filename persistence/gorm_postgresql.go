// persistence/gorm_postgresql.go
package persistence

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wfunc/manhunt/models"
)

// GormStore is the PostgreSQL-backed Store.
type GormStore struct {
	db *gorm.DB
}

func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormStore, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := autoMigrate(db); err != nil {
		return nil, err
	}

	return &GormStore{db: db}, nil
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Game{},
		&models.Player{},
		&models.GameEvent{},
	)
}

func (s *GormStore) CreateGame(g *models.Game) error {
	return s.db.Create(g).Error
}

func (s *GormStore) GetGame(id uint) (*models.Game, error) {
	var game models.Game
	if err := s.db.First(&game, id).Error; err != nil {
		return nil, translate(err)
	}
	return &game, nil
}

func (s *GormStore) SaveGame(g *models.Game) error {
	return s.db.Save(g).Error
}

func (s *GormStore) ListGames() ([]models.Game, error) {
	var games []models.Game
	err := s.db.Order("id DESC").Find(&games).Error
	return games, err
}

func (s *GormStore) CreatePlayer(p *models.Player) error {
	return s.db.Create(p).Error
}

func (s *GormStore) GetPlayer(id uint) (*models.Player, error) {
	var player models.Player
	if err := s.db.First(&player, id).Error; err != nil {
		return nil, translate(err)
	}
	return &player, nil
}

func (s *GormStore) FindPlayerByCode(gameID uint, code string) (*models.Player, error) {
	var player models.Player
	err := s.db.Where("game_id = ? AND secret_code = ?", gameID, code).First(&player).Error
	if err != nil {
		return nil, translate(err)
	}
	return &player, nil
}

func (s *GormStore) FindPlayerByNickname(gameID uint, nickname string) (*models.Player, error) {
	var player models.Player
	err := s.db.Where("game_id = ? AND nickname = ?", gameID, nickname).First(&player).Error
	if err != nil {
		return nil, translate(err)
	}
	return &player, nil
}

func (s *GormStore) SavePlayers(players ...*models.Player) error {
	for _, p := range players {
		if err := s.db.Save(p).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *GormStore) PlayersByGame(gameID uint) ([]*models.Player, error) {
	var players []*models.Player
	err := s.db.Where("game_id = ?", gameID).Order("id").Find(&players).Error
	return players, err
}

func (s *GormStore) AlivePlayersByGame(gameID uint) ([]*models.Player, error) {
	var players []*models.Player
	err := s.db.Where("game_id = ? AND is_alive = ?", gameID, true).Order("id").Find(&players).Error
	return players, err
}

func (s *GormStore) CountAlive(gameID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Player{}).
		Where("game_id = ? AND is_alive = ?", gameID, true).
		Count(&count).Error
	return count, err
}

func (s *GormStore) Leaderboard(gameID uint) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	err := s.db.Model(&models.Player{}).
		Select("id, nickname, kills, is_alive").
		Where("game_id = ?", gameID).
		Order("kills DESC, id ASC").
		Scan(&entries).Error
	return entries, err
}

func (s *GormStore) ListPlayers(offset, limit int) ([]models.Player, int64, error) {
	var total int64
	if err := s.db.Model(&models.Player{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var players []models.Player
	err := s.db.Order("id DESC").Offset(offset).Limit(limit).Find(&players).Error
	return players, total, err
}

func (s *GormStore) PlayerIDs(gameID *uint) ([]uint, error) {
	var ids []uint
	q := s.db.Model(&models.Player{})
	if gameID != nil {
		q = q.Where("game_id = ?", *gameID)
	}
	err := q.Pluck("id", &ids).Error
	return ids, err
}

func (s *GormStore) DeletePlayers(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	// Hunters pointing at a deleted player keep existing with no target.
	if err := s.db.Model(&models.Player{}).
		Where("current_target_id IN ?", ids).
		Update("current_target_id", nil).Error; err != nil {
		return err
	}
	return s.db.Delete(&models.Player{}, ids).Error
}

func (s *GormStore) AppendEvent(ev *models.GameEvent) error {
	return s.db.Create(ev).Error
}

func (s *GormStore) InTransaction(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRecordNotFound
	}
	return err
}
