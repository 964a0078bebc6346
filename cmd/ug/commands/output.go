package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fivetwenty-io/usergrid-client/internal/constants"
	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// maxCellWidth truncates long property values in table output.
const maxCellWidth = 48

// renderEntities writes entities in the requested format. Table output
// shows the reserved columns followed by the remaining properties of the
// first entity, sorted by name.
func renderEntities(w io.Writer, entities []usergrid.Entity, format string) error {
	properties := make([]map[string]interface{}, 0, len(entities))
	for _, entity := range entities {
		properties = append(properties, entity.Properties())
	}

	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

		return encoder.Encode(properties)
	case constants.FormatYAML:
		return yaml.NewEncoder(w).Encode(properties)
	}

	if len(entities) == 0 {
		_, _ = fmt.Fprintln(w, "No entities found")

		return nil
	}

	columns := entityColumns(properties[0])

	header := make([]any, 0, len(columns))
	for _, column := range columns {
		header = append(header, strings.ToUpper(column))
	}

	table := tablewriter.NewWriter(w)
	table.Header(header...)

	for _, props := range properties {
		row := make([]any, 0, len(columns))
		for _, column := range columns {
			row = append(row, formatCell(column, props[column]))
		}

		_ = table.Append(row...)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func entityColumns(props map[string]interface{}) []string {
	columns := []string{usergrid.PropertyUUID, usergrid.PropertyType, usergrid.PropertyName}

	var rest []string

	for key := range props {
		switch key {
		case usergrid.PropertyUUID, usergrid.PropertyType, usergrid.PropertyName, "metadata":
			continue
		default:
			rest = append(rest, key)
		}
	}

	sort.Strings(rest)

	return append(columns, rest...)
}

func formatCell(column string, value interface{}) string {
	if value == nil {
		return ""
	}

	if column == usergrid.PropertyCreated || column == usergrid.PropertyModified {
		if millis, ok := value.(float64); ok {
			return time.UnixMilli(int64(millis)).UTC().Format(time.RFC3339)
		}
	}

	var text string

	switch v := value.(type) {
	case string:
		text = v
	case map[string]interface{}, []interface{}:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}

		text = string(data)
	default:
		text = fmt.Sprint(v)
	}

	if len(text) > maxCellWidth {
		return text[:maxCellWidth-3] + "..."
	}

	return text
}

// renderResponse writes the entities of resp followed by its cursor.
func renderResponse(w io.Writer, resp *usergrid.Response, format string) error {
	err := renderEntities(w, resp.Entities, format)
	if err != nil {
		return err
	}

	if resp.HasNextPage() && (format == "" || format == constants.FormatTable) {
		_, _ = fmt.Fprintf(w, "More results available (cursor %s), use --all to fetch every page\n", resp.Cursor)
	}

	return nil
}
