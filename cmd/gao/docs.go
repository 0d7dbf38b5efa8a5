package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gao-dev/gao/internal/docstore"
	"github.com/gao-dev/gao/pkg/models"
)

var (
	docsListState string
	docsListType  string
	docsListEpic  int
	docsListStory int
	docsActor     string
	docsReason    string
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Inspect and manage the project document catalog",
	Long: `Work with the documents gao registered for this project.

Documents move through a validated lifecycle:
draft → in_review → active → updated → in_review (loop), with
active → obsolete and archival from active or obsolete states.`,
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openProjectStore()
		if err != nil {
			return err
		}
		defer store.Close()

		docs, err := store.List(docstore.ListFilter{
			State: models.DocumentState(docsListState),
			Type:  models.DocumentType(docsListType),
			Epic:  docsListEpic,
			Story: docsListStory,
		})
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			fmt.Println("no documents")
			return nil
		}
		for _, doc := range docs {
			printDocLine(doc)
		}
		return nil
	},
}

var docsShowCmd = &cobra.Command{
	Use:   "show <id-or-path>",
	Short: "Show a document and its transition history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openProjectStore()
		if err != nil {
			return err
		}
		defer store.Close()

		doc, err := lookupDocument(store, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("id:      %s\n", doc.ID)
		fmt.Printf("path:    %s\n", doc.Path)
		fmt.Printf("type:    %s\n", doc.Type)
		fmt.Printf("state:   %s\n", stateColor(doc.State))
		fmt.Printf("author:  %s\n", doc.Author)
		if doc.Epic > 0 {
			fmt.Printf("epic:    %d\n", doc.Epic)
		}
		if doc.Story > 0 {
			fmt.Printf("story:   %d\n", doc.Story)
		}
		fmt.Printf("hash:    %s\n", doc.ContentHash)
		fmt.Printf("created: %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("updated: %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))
		for k, v := range doc.Metadata {
			fmt.Printf("meta:    %s=%s\n", k, v)
		}

		history, err := store.History(doc.ID)
		if err != nil {
			return err
		}
		if len(history) > 0 {
			fmt.Println("\nhistory:")
			for _, tr := range history {
				fmt.Printf("  %s  %s → %s  (%s", tr.Timestamp.Format("2006-01-02 15:04:05"), tr.FromState, tr.ToState, tr.Actor)
				if tr.Reason != "" {
					fmt.Printf(": %s", tr.Reason)
				}
				fmt.Println(")")
			}
		}
		return nil
	},
}

var docsTransitionCmd = &cobra.Command{
	Use:   "transition <id-or-path> <state>",
	Short: "Transition a document to a new lifecycle state",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openProjectStore()
		if err != nil {
			return err
		}
		defer store.Close()

		doc, err := lookupDocument(store, args[0])
		if err != nil {
			return err
		}

		tr, err := store.Transition(doc.ID, models.DocumentState(args[1]), docsReason, docsActor)
		if err != nil {
			return err
		}
		fmt.Printf("%s %s: %s → %s\n", color.GreenString("✓"), doc.Path, tr.FromState, tr.ToState)
		return nil
	},
}

var docsArchiveCmd = &cobra.Command{
	Use:   "archive <id-or-path>",
	Short: "Archive a document (moves the file into .archive/)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openProjectStore()
		if err != nil {
			return err
		}
		defer store.Close()

		doc, err := lookupDocument(store, args[0])
		if err != nil {
			return err
		}
		if err := store.Archive(doc.ID, docsReason, docsActor); err != nil {
			return err
		}
		fmt.Printf("%s archived %s\n", color.GreenString("✓"), doc.Path)
		return nil
	},
}

var docsRestoreCmd = &cobra.Command{
	Use:   "restore <id-or-path>",
	Short: "Restore an archived document to its original path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openProjectStore()
		if err != nil {
			return err
		}
		defer store.Close()

		doc, err := lookupDocument(store, args[0])
		if err != nil {
			return err
		}
		if err := store.Restore(doc.ID, docsReason, docsActor); err != nil {
			return err
		}
		fmt.Printf("%s restored %s\n", color.GreenString("✓"), doc.Path)
		return nil
	},
}

var docsSearchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search documents by path, type, or metadata",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openProjectStore()
		if err != nil {
			return err
		}
		defer store.Close()

		docs, err := store.Search(strings.Join(args, " "))
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			fmt.Println("no matches")
			return nil
		}
		for _, doc := range docs {
			printDocLine(doc)
		}
		return nil
	},
}

func init() {
	docsListCmd.Flags().StringVar(&docsListState, "state", "", "Filter by state")
	docsListCmd.Flags().StringVar(&docsListType, "type", "", "Filter by type")
	docsListCmd.Flags().IntVar(&docsListEpic, "epic", 0, "Filter by epic number")
	docsListCmd.Flags().IntVar(&docsListStory, "story", 0, "Filter by story number")

	for _, c := range []*cobra.Command{docsTransitionCmd, docsArchiveCmd, docsRestoreCmd} {
		c.Flags().StringVar(&docsActor, "actor", "cli", "Actor recorded in the audit trail")
		c.Flags().StringVar(&docsReason, "reason", "", "Reason recorded in the audit trail")
	}

	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsShowCmd)
	docsCmd.AddCommand(docsTransitionCmd)
	docsCmd.AddCommand(docsArchiveCmd)
	docsCmd.AddCommand(docsRestoreCmd)
	docsCmd.AddCommand(docsSearchCmd)
}

// openProjectStore opens the catalog for the current directory.
func openProjectStore() (*docstore.Store, error) {
	projectRoot, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determine project root: %w", err)
	}
	store, err := docstore.Open(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("open document catalog: %w", err)
	}
	return store, nil
}

// lookupDocument resolves an argument as a document ID, then as a path.
func lookupDocument(store *docstore.Store, arg string) (*models.Document, error) {
	doc, err := store.Get(arg)
	if err == nil {
		return doc, nil
	}
	return store.GetByPath(arg)
}

func printDocLine(doc models.Document) {
	fmt.Printf("%s  %-10s %-12s %s\n", doc.ID[:8], stateColor(doc.State), doc.Type, doc.Path)
}

func stateColor(state models.DocumentState) string {
	switch state {
	case models.DocStateActive:
		return color.GreenString(string(state))
	case models.DocStateArchived, models.DocStateObsolete:
		return color.New(color.Faint).Sprint(string(state))
	case models.DocStateInReview:
		return color.YellowString(string(state))
	default:
		return string(state)
	}
}
