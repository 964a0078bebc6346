package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fivetwenty-io/usergrid-client/internal/constants"
	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewGetCommand creates the get command.
func NewGetCommand() *cobra.Command {
	var (
		ql    string
		limit int
		all   bool
	)

	cmd := &cobra.Command{
		Use:   "get TYPE [UUID_OR_NAME]",
		Short: "Get entities",
		Long:  "Get one entity by UUID or name, or list a collection with an optional ql filter",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, closeClient, err := CreateClient(ctx)
			if err != nil {
				return err
			}
			defer closeClient()

			if len(args) == 2 {
				resp, err := client.Get(ctx, args[0], args[1])
				if err != nil {
					return fmt.Errorf("failed to get %s %s: %w", args[0], args[1], err)
				}

				return renderResponse(cmd.OutOrStdout(), resp, viper.GetString("output"))
			}

			query := usergrid.NewQuery(args[0]).Limit(limit)
			if ql != "" {
				query.QL(ql)
			}

			return runQuery(ctx, cmd.OutOrStdout(), client, query, all)
		},
	}

	cmd.Flags().StringVarP(&ql, "ql", "q", "", "where clause filter, for example \"age > 21\"")
	cmd.Flags().IntVarP(&limit, "limit", "l", usergrid.DefaultQueryLimit, "entities per page")
	cmd.Flags().BoolVar(&all, "all", false, "fetch every page")

	return cmd
}

// runQuery sends query and renders the results, following cursors when all is set.
func runQuery(ctx context.Context, w io.Writer, client usergrid.Client, query *usergrid.Query, all bool) error {
	resp, err := client.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", query.CollectionName(), err)
	}

	if !all {
		return renderResponse(w, resp, viper.GetString("output"))
	}

	entities := resp.Entities
	for resp.HasNextPage() {
		resp, err = client.NextPage(ctx, resp)
		if err != nil {
			return fmt.Errorf("failed to fetch next page of %s: %w", query.CollectionName(), err)
		}

		entities = append(entities, resp.Entities...)
	}

	return renderEntities(w, entities, viper.GetString("output"))
}

// NewCreateCommand creates the create command.
func NewCreateCommand() *cobra.Command {
	var (
		data string
		file string
	)

	cmd := &cobra.Command{
		Use:   "create TYPE",
		Short: "Create an entity",
		Long:  "Create an entity in a collection from a JSON object given with --data or --file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readBody(data, file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			client, closeClient, err := CreateClient(ctx)
			if err != nil {
				return err
			}
			defer closeClient()

			resp, err := client.Post(ctx, args[0], body)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", args[0], err)
			}

			return renderResponse(cmd.OutOrStdout(), resp, viper.GetString("output"))
		},
	}

	addBodyFlags(cmd, &data, &file)

	return cmd
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand() *cobra.Command {
	var (
		data  string
		file  string
		ql    string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "update TYPE [UUID_OR_NAME]",
		Short: "Update entities",
		Long:  "Update one entity, or every entity matching --ql, with the properties of a JSON object",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readBody(data, file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			client, closeClient, err := CreateClient(ctx)
			if err != nil {
				return err
			}
			defer closeClient()

			var resp *usergrid.Response

			switch {
			case len(args) == 2:
				resp, err = client.Put(ctx, args[0], args[1], body)
			case ql != "":
				resp, err = client.PutQuery(ctx, usergrid.NewQuery(args[0]).QL(ql).Limit(limit), body)
			default:
				resp, err = client.PutBody(ctx, args[0], body)
			}

			if err != nil {
				return fmt.Errorf("failed to update %s: %w", args[0], err)
			}

			return renderResponse(cmd.OutOrStdout(), resp, viper.GetString("output"))
		},
	}

	addBodyFlags(cmd, &data, &file)
	cmd.Flags().StringVarP(&ql, "ql", "q", "", "update every entity matching this filter")
	cmd.Flags().IntVarP(&limit, "limit", "l", usergrid.DefaultQueryLimit, "maximum entities updated by --ql")

	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand() *cobra.Command {
	var (
		ql    string
		limit int
		force bool
	)

	cmd := &cobra.Command{
		Use:   "delete TYPE [UUID_OR_NAME]",
		Short: "Delete entities",
		Long:  "Delete one entity, or every entity matching --ql",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && ql == "" {
				return fmt.Errorf("%w: give UUID_OR_NAME or --ql", constants.ErrMissingTarget)
			}

			if len(args) == 1 && !force {
				return fmt.Errorf("%w: deleting by query needs --force", constants.ErrConfirmationRequired)
			}

			ctx := cmd.Context()

			client, closeClient, err := CreateClient(ctx)
			if err != nil {
				return err
			}
			defer closeClient()

			var resp *usergrid.Response
			if len(args) == 2 {
				resp, err = client.Delete(ctx, args[0], args[1])
			} else {
				resp, err = client.DeleteQuery(ctx, usergrid.NewQuery(args[0]).QL(ql).Limit(limit))
			}

			if err != nil {
				return fmt.Errorf("failed to delete from %s: %w", args[0], err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d entities from %s\n", resp.Count(), args[0])

			return nil
		},
	}

	cmd.Flags().StringVarP(&ql, "ql", "q", "", "delete every entity matching this filter")
	cmd.Flags().IntVarP(&limit, "limit", "l", usergrid.DefaultQueryLimit, "maximum entities deleted by --ql")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "confirm deleting by query")

	return cmd
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	var (
		limit  int
		cursor string
		all    bool
	)

	cmd := &cobra.Command{
		Use:   "query TYPE FILTER",
		Short: "Query a collection",
		Long:  "List the entities of a collection matching a where clause filter, for example \"color = 'black'\"",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, closeClient, err := CreateClient(ctx)
			if err != nil {
				return err
			}
			defer closeClient()

			query := usergrid.NewQuery(args[0]).QL(args[1]).Limit(limit).Cursor(cursor)

			return runQuery(ctx, cmd.OutOrStdout(), client, query, all)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", usergrid.DefaultQueryLimit, "entities per page")
	cmd.Flags().StringVar(&cursor, "cursor", "", "start from this cursor")
	cmd.Flags().BoolVar(&all, "all", false, "fetch every page")

	return cmd
}

func addBodyFlags(cmd *cobra.Command, data, file *string) {
	cmd.Flags().StringVarP(data, "data", "d", "", "entity properties as a JSON object")
	cmd.Flags().StringVarP(file, "file", "F", "", "read entity properties from a JSON file")
	cmd.MarkFlagsMutuallyExclusive("data", "file")
	cmd.MarkFlagsOneRequired("data", "file")
}

// readBody parses data, or the contents of file, as a JSON object.
func readBody(data, file string) (usergrid.Body, error) {
	raw := []byte(data)

	if file != "" {
		content, err := readBodyFile(file)
		if err != nil {
			return nil, err
		}

		raw = content
	}

	var body usergrid.Body

	err := json.Unmarshal(raw, &body)
	if err != nil || body == nil {
		return nil, constants.ErrInvalidJSONBody
	}

	return body, nil
}

func readBodyFile(path string) ([]byte, error) {
	if strings.Contains(path, "..") {
		return nil, constants.ErrDirectoryTraverse
	}

	cleaned := filepath.Clean(path)

	info, err := os.Stat(cleaned)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", constants.ErrNotRegularFile, path)
	}

	content, err := os.ReadFile(cleaned)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return content, nil
}
