// Package cli implements ragctl, the operator command line for indexing
// documents and inspecting conversations without going through HTTP.
package cli

import (
	"context"
	"errors"
	"fmt"

	"chatdoc-be/internal/service"
	"chatdoc-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// EventSource streams domain events. *nats.Subscriber satisfies it.
type EventSource interface {
	Subscribe(ctx context.Context, subject string, durableName string, handler nats.EventHandler) error
}

type Services struct {
	Documents service.IDocumentService
	Indexer   service.IIndexerService
	Chat      service.IChatService
	Events    EventSource
}

var (
	documentService service.IDocumentService
	indexerService  service.IIndexerService
	chatService     service.IChatService
	eventSource     EventSource

	userFlag string
)

var (
	heading = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen)
	muted   = color.New(color.FgHiBlack)
)

var rootCmd = &cobra.Command{
	Use:           "ragctl",
	Short:         "Operate the document chat index",
	Long:          `ragctl indexes uploaded PDFs, asks grounded questions and inspects conversations directly against the configured store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "owner user id")
}

func SetServices(s Services) {
	documentService = s.Documents
	indexerService = s.Indexer
	chatService = s.Chat
	eventSource = s.Events
}

func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func ownerId() (uuid.UUID, error) {
	if userFlag == "" {
		return uuid.Nil, errors.New("--user is required")
	}
	id, err := uuid.Parse(userFlag)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --user: %w", err)
	}
	return id, nil
}

func parseDocumentId(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid document id %q: %w", arg, err)
	}
	return id, nil
}

// scope resolves the owner flag and the first positional document id.
func scope(args []string) (uuid.UUID, uuid.UUID, error) {
	owner, err := ownerId()
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	doc, err := parseDocumentId(args[0])
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return owner, doc, nil
}
