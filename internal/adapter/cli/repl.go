// Package cli is the interactive terminal front end.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/Nyukimin/schooloo/internal/application/orchestrator"
	"github.com/Nyukimin/schooloo/internal/domain/routing"
)

// Agent is the orchestrator surface used by the REPL
type Agent interface {
	Dispatch(ctx context.Context, req orchestrator.DispatchRequest) orchestrator.DispatchResponse
	Chat(ctx context.Context, req orchestrator.ChatRequest) (orchestrator.ChatResponse, error)
}

// LineReader yields one input line per call. io.EOF ends the session.
type LineReader interface {
	Readline() (string, error)
	Close() error
}

// NewReadline creates a terminal line reader with history
func NewReadline(role routing.Role, historyFile string) (*readline.Instance, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          fmt.Sprintf("[%s] > ", role),
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return rl, nil
}

// REPL reads questions and prints answers until quit or end of input
type REPL struct {
	agent     Agent
	role      routing.Role
	sessionID string
	useLLM    bool
	out       io.Writer
}

// NewREPL creates a REPL. useLLM routes input to Chat instead of Dispatch.
func NewREPL(agent Agent, role routing.Role, sessionID string, useLLM bool, out io.Writer) *REPL {
	return &REPL{
		agent:     agent,
		role:      role,
		sessionID: sessionID,
		useLLM:    useLLM,
		out:       out,
	}
}

// Run drives the loop until quit, EOF or ctx cancellation
func (r *REPL) Run(ctx context.Context, in LineReader) error {
	defer in.Close()

	mode := "tool dispatch"
	if r.useLLM {
		mode = "LLM chat"
	}
	fmt.Fprintf(r.out, "Schooloo assistant (%s, role: %s). Type 'quit' to exit.\n", mode, r.role)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line, err := in.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		if isQuit(text) {
			fmt.Fprintln(r.out, "Goodbye!")
			return nil
		}

		if r.useLLM {
			r.chat(ctx, text)
		} else {
			r.dispatch(ctx, text)
		}
	}
}

func (r *REPL) dispatch(ctx context.Context, text string) {
	resp := r.agent.Dispatch(ctx, orchestrator.DispatchRequest{
		SessionID: r.sessionID,
		Channel:   "cli",
		Text:      text,
		Role:      r.role.String(),
	})
	fmt.Fprintln(r.out, resp.Response)
	if len(resp.ToolsUsed) > 0 {
		fmt.Fprintf(r.out, "Tools used: %s\n", strings.Join(resp.ToolsUsed, ", "))
	}
	fmt.Fprintln(r.out)
}

func (r *REPL) chat(ctx context.Context, text string) {
	resp, err := r.agent.Chat(ctx, orchestrator.ChatRequest{
		SessionID: r.sessionID,
		Channel:   "cli",
		Message:   text,
		Role:      r.role.String(),
		Ground:    true,
	})
	if err != nil {
		fmt.Fprintf(r.out, "Error: %v\n\n", err)
		return
	}
	fmt.Fprintln(r.out, resp.Message)
	if len(resp.ToolsUsed) > 0 {
		fmt.Fprintf(r.out, "Tools used: %s\n", strings.Join(resp.ToolsUsed, ", "))
	}
	fmt.Fprintln(r.out)
}

func isQuit(text string) bool {
	switch strings.ToLower(text) {
	case "quit", "exit", "bye":
		return true
	}
	return false
}
