package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/Nyukimin/schooloo/internal/domain/routing"
	"github.com/Nyukimin/schooloo/internal/domain/session"
)

// session ids become file names
var validID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// JSONSessionRepository stores one JSON file per session
type JSONSessionRepository struct {
	baseDir string
	mu      sync.Mutex
}

// NewJSONSessionRepository creates a JSONSessionRepository rooted at baseDir
func NewJSONSessionRepository(baseDir string) *JSONSessionRepository {
	return &JSONSessionRepository{
		baseDir: baseDir,
	}
}

// sessionDTO is the on-disk form of a session
type sessionDTO struct {
	ID        string                 `json:"id"`
	Channel   string                 `json:"channel"`
	Role      string                 `json:"role"`
	History   []turnDTO              `json:"history"`
	Memory    map[string]interface{} `json:"memory"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// turnDTO is the on-disk form of a turn
type turnDTO struct {
	JobID string    `json:"job_id"`
	Kind  string    `json:"kind"`
	Query string    `json:"query"`
	Tools []string  `json:"tools,omitempty"`
	Reply string    `json:"reply"`
	At    time.Time `json:"at"`
}

// Save writes the session file
func (r *JSONSessionRepository) Save(ctx context.Context, sess *session.Session) error {
	filePath, err := r.getFilePath(sess.ID())
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(r.toDTO(sess), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.baseDir, 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// Load reads a session file. A missing file yields session.ErrSessionNotFound.
func (r *JSONSessionRepository) Load(ctx context.Context, id string) (*session.Session, error) {
	filePath, err := r.getFilePath(id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	data, err := os.ReadFile(filePath)
	r.mu.Unlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", session.ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var dto sessionDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return r.fromDTO(&dto), nil
}

// Exists reports whether a session file exists
func (r *JSONSessionRepository) Exists(ctx context.Context, id string) (bool, error) {
	filePath, err := r.getFilePath(id)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Delete removes a session file. Deleting a missing session is not an error.
func (r *JSONSessionRepository) Delete(ctx context.Context, id string) error {
	filePath, err := r.getFilePath(id)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// getFilePath maps a session id to its file
func (r *JSONSessionRepository) getFilePath(id string) (string, error) {
	if !validID.MatchString(id) {
		return "", fmt.Errorf("invalid session id: %q", id)
	}
	return filepath.Join(r.baseDir, id+".json"), nil
}

func (r *JSONSessionRepository) toDTO(sess *session.Session) *sessionDTO {
	history := make([]turnDTO, 0, sess.HistoryCount())
	for _, t := range sess.GetHistory() {
		history = append(history, turnDTO{
			JobID: t.JobID,
			Kind:  string(t.Kind),
			Query: t.Query,
			Tools: t.Tools,
			Reply: t.Reply,
			At:    t.At,
		})
	}

	return &sessionDTO{
		ID:        sess.ID(),
		Channel:   sess.Channel(),
		Role:      sess.Role().String(),
		History:   history,
		Memory:    sess.GetAllMemory(),
		CreatedAt: sess.CreatedAt(),
		UpdatedAt: sess.UpdatedAt(),
	}
}

func (r *JSONSessionRepository) fromDTO(dto *sessionDTO) *session.Session {
	sess := session.ReconstructSession(dto.ID, dto.Channel, routing.ParseRole(dto.Role), dto.CreatedAt, dto.UpdatedAt)

	turns := make([]session.Turn, 0, len(dto.History))
	for _, t := range dto.History {
		turns = append(turns, session.Turn{
			JobID: t.JobID,
			Kind:  session.TurnKind(t.Kind),
			Query: t.Query,
			Tools: t.Tools,
			Reply: t.Reply,
			At:    t.At,
		})
	}
	sess.RestoreTurns(turns)

	sess.RestoreMemory(dto.Memory)

	return sess
}
