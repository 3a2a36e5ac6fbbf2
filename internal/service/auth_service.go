package service

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidCredentials 在管理员凭据不匹配时返回
var ErrInvalidCredentials = errors.New("invalid admin credentials")

// AdminSession 表示一次已登录的管理员会话。
// 登录时创建，登出或进程结束时销毁。
type AdminSession struct {
	Token     string
	Username  string
	CreatedAt time.Time
}

// AuthService 校验静态管理员凭据并维护存活的会话对象。
// 凭据为单组配置值，按精确字符串比对，不做散列，也不限速。
type AuthService struct {
	adminUsername string
	adminPassword string

	mu       sync.Mutex
	sessions map[string]AdminSession
}

// NewAuthService 构造 AuthService
func NewAuthService(adminUsername, adminPassword string) *AuthService {
	return &AuthService{
		adminUsername: adminUsername,
		adminPassword: adminPassword,
		sessions:      make(map[string]AdminSession),
	}
}

// Login 校验凭据，成功时签发一个新的会话令牌
func (s *AuthService) Login(username, password string) (AdminSession, error) {
	if username != s.adminUsername || password != s.adminPassword {
		return AdminSession{}, ErrInvalidCredentials
	}

	session := AdminSession{
		Token:     uuid.NewString(),
		Username:  username,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()

	return session, nil
}

// Validate 判断会话令牌是否仍然有效
func (s *AuthService) Validate(token string) bool {
	if token == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[token]
	return ok
}

// Logout 销毁指定会话；令牌不存在时为空操作
func (s *AuthService) Logout(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}
