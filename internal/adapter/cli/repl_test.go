package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/chzyer/readline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nyukimin/schooloo/internal/application/orchestrator"
	"github.com/Nyukimin/schooloo/internal/domain/routing"
)

type scriptedReader struct {
	lines  []string
	errs   []error
	pos    int
	closed bool
}

func (s *scriptedReader) Readline() (string, error) {
	if s.pos >= len(s.lines) {
		return "", io.EOF
	}
	line := s.lines[s.pos]
	var err error
	if s.pos < len(s.errs) {
		err = s.errs[s.pos]
	}
	s.pos++
	return line, err
}

func (s *scriptedReader) Close() error {
	s.closed = true
	return nil
}

type fakeAgent struct {
	dispatched []string
	chatted    []orchestrator.ChatRequest
	chatErr    error
}

func (f *fakeAgent) Dispatch(ctx context.Context, req orchestrator.DispatchRequest) orchestrator.DispatchResponse {
	f.dispatched = append(f.dispatched, req.Text)
	return orchestrator.DispatchResponse{
		Response:  "Fee Structure for Delhi Public School:",
		ToolsUsed: []string{"get_fee_structure"},
		Success:   true,
	}
}

func (f *fakeAgent) Chat(ctx context.Context, req orchestrator.ChatRequest) (orchestrator.ChatResponse, error) {
	f.chatted = append(f.chatted, req)
	if f.chatErr != nil {
		return orchestrator.ChatResponse{}, f.chatErr
	}
	return orchestrator.ChatResponse{Message: "Happy to help!"}, nil
}

func TestREPL_DispatchUntilQuit(t *testing.T) {
	agent := &fakeAgent{}
	var out bytes.Buffer
	in := &scriptedReader{lines: []string{"What are the fees?", "   ", "", "QUIT", "never read"}}

	err := NewREPL(agent, routing.RoleParent, "cli-test", false, &out).Run(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, []string{"What are the fees?"}, agent.dispatched)
	assert.Contains(t, out.String(), "Fee Structure for Delhi Public School:")
	assert.Contains(t, out.String(), "Tools used: get_fee_structure")
	assert.Contains(t, out.String(), "Goodbye!")
	assert.True(t, in.closed)
	assert.Equal(t, 4, in.pos)
}

func TestREPL_EOFEnds(t *testing.T) {
	agent := &fakeAgent{}
	var out bytes.Buffer

	err := NewREPL(agent, routing.RoleStudent, "", false, &out).Run(context.Background(), &scriptedReader{lines: []string{"exam pattern"}})
	require.NoError(t, err)
	assert.Len(t, agent.dispatched, 1)
	assert.Contains(t, out.String(), "role: student")
}

func TestREPL_InterruptOnEmptyLineEnds(t *testing.T) {
	agent := &fakeAgent{}
	in := &scriptedReader{
		lines: []string{"partial", "", "fees"},
		errs:  []error{readline.ErrInterrupt, readline.ErrInterrupt},
	}

	err := NewREPL(agent, routing.RoleParent, "", false, io.Discard).Run(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, agent.dispatched)
}

func TestREPL_LLMMode(t *testing.T) {
	agent := &fakeAgent{}
	var out bytes.Buffer

	err := NewREPL(agent, routing.RoleAdmin, "cli-llm", true, &out).Run(context.Background(), &scriptedReader{lines: []string{"hello", "quit"}})
	require.NoError(t, err)

	require.Len(t, agent.chatted, 1)
	assert.Equal(t, "admin", agent.chatted[0].Role)
	assert.Equal(t, "cli-llm", agent.chatted[0].SessionID)
	assert.True(t, agent.chatted[0].Ground)
	assert.Empty(t, agent.dispatched)
	assert.Contains(t, out.String(), "Happy to help!")
	assert.Contains(t, out.String(), "LLM chat")
}

func TestREPL_ChatErrorIsPrinted(t *testing.T) {
	agent := &fakeAgent{chatErr: errors.New("quota exceeded")}
	var out bytes.Buffer

	err := NewREPL(agent, routing.RoleParent, "", true, &out).Run(context.Background(), &scriptedReader{lines: []string{"hello"}})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Error: quota exceeded")
}

func TestREPL_ReadErrorIsReturned(t *testing.T) {
	in := &scriptedReader{lines: []string{""}, errs: []error{errors.New("tty gone")}}
	err := NewREPL(&fakeAgent{}, routing.RoleParent, "", false, io.Discard).Run(context.Background(), in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tty gone")
}

func TestREPL_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	agent := &fakeAgent{}
	err := NewREPL(agent, routing.RoleParent, "", false, io.Discard).Run(ctx, &scriptedReader{lines: []string{"fees"}})
	require.NoError(t, err)
	assert.Empty(t, agent.dispatched)
}
