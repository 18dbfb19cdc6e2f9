package service

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/programming666/personal-blog/config"
	"github.com/programming666/personal-blog/internal/model"
	"github.com/programming666/personal-blog/internal/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Message{}, &model.BroadcastMessage{}, &model.BroadcastSendDetail{}))
	return db
}

func createUser(t *testing.T, repo *repository.UserRepository, username, role string) *model.User {
	u := &model.User{
		Username: username,
		Email:    username + "@x.com",
		Name:     username,
		Role:     role,
		CanLogin: true,
	}
	require.NoError(t, repo.Create(u))
	return u
}

func createUsers(t *testing.T, repo *repository.UserRepository, n int) []*model.User {
	users := make([]*model.User, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, createUser(t, repo, fmt.Sprintf("user%03d", i), model.RoleUser))
	}
	return users
}

func testMessagingConfig() config.MessagingConfig {
	return config.Default().Messaging
}

func testBroadcastConfig() config.BroadcastConfig {
	cfg := config.Default().Broadcast
	cfg.BatchPauseMillis = 1
	return cfg
}

// recordingScheduler records scheduled runs instead of starting them
type recordingScheduler struct {
	mu  sync.Mutex
	ids []uint
}

func (s *recordingScheduler) Schedule(id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, id)
}

func (s *recordingScheduler) scheduled() []uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint(nil), s.ids...)
}

var nopLogger = zerolog.Nop()
