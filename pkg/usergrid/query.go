package usergrid

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// DefaultQueryLimit is the page size the server applies when no limit is sent.
const DefaultQueryLimit = 10

// Operator is a comparison operator in the filter language.
type Operator string

// Supported operators.
const (
	OperatorEqual              Operator = "="
	OperatorGreaterThan        Operator = ">"
	OperatorGreaterThanOrEqual Operator = ">="
	OperatorLessThan           Operator = "<"
	OperatorLessThanOrEqual    Operator = "<="
	OperatorContains           Operator = "contains"
)

// SortOrder is the direction of an order by clause.
type SortOrder string

// Sort orders.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

const (
	keywordAnd = "and"
	keywordOr  = "or"
	keywordNot = "not"

	selectAll = "select *"
)

// Query builds the query-string fragment sent with collection requests.
//
// Filter clauses are kept on a requirement stack where index 0 is the top.
// Comparisons extend the top frame, conjunctions push new frames, and Build
// reverses the stack to restore call order.
type Query struct {
	collection   string
	requirements []string
	orderFields  []string
	order        map[string]SortOrder
	limit        int
	cursor       string
	urlTerms     []string
	fromString   *string
}

// NewQuery returns a query, optionally scoped to a collection.
func NewQuery(collection ...string) *Query {
	q := &Query{
		requirements: []string{""},
		order:        make(map[string]SortOrder),
		limit:        DefaultQueryLimit,
	}

	if len(collection) > 0 {
		q.collection = collection[0]
	}

	return q
}

// Clone returns a deep copy of the query.
func (q *Query) Clone() *Query {
	c := &Query{
		collection:   q.collection,
		requirements: slices.Clone(q.requirements),
		orderFields:  slices.Clone(q.orderFields),
		order:        make(map[string]SortOrder, len(q.order)),
		limit:        q.limit,
		cursor:       q.cursor,
		urlTerms:     slices.Clone(q.urlTerms),
	}

	for k, v := range q.order {
		c.order[k] = v
	}

	if q.fromString != nil {
		raw := *q.fromString
		c.fromString = &raw
	}

	return c
}

// Collection sets the collection the query targets.
func (q *Query) Collection(name string) *Query {
	q.collection = name

	return q
}

// Type is an alias for Collection.
func (q *Query) Type(name string) *Query {
	return q.Collection(name)
}

// Limit sets the page size.
func (q *Query) Limit(limit int) *Query {
	q.limit = limit

	return q
}

// Cursor sets the pagination cursor.
func (q *Query) Cursor(cursor string) *Query {
	q.cursor = cursor

	return q
}

// FromString replaces the whole compiled query with a raw ql string.
// Every other builder call is ignored once this is set.
func (q *Query) FromString(raw string) *Query {
	q.fromString = &raw

	return q
}

// QL appends a raw clause to the requirement stack.
func (q *Query) QL(clause string) *Query {
	if clause == "" {
		return q
	}

	return q.addRequirement(clause)
}

// URLTerm adds a name=value pair to the query string. A "ql" term is
// treated as a raw clause.
func (q *Query) URLTerm(name, value string) *Query {
	if name == "ql" {
		return q.QL(value)
	}

	q.urlTerms = append(q.urlTerms, url.QueryEscape(name)+"="+url.QueryEscape(value))

	return q
}

// Eq adds an equality requirement.
func (q *Query) Eq(field string, value interface{}) *Query {
	return q.AddOperationRequirement(field, OperatorEqual, value)
}

// Equals is an alias for Eq.
func (q *Query) Equals(field string, value interface{}) *Query {
	return q.Eq(field, value)
}

// Filter is an alias for Eq.
func (q *Query) Filter(field string, value interface{}) *Query {
	return q.Eq(field, value)
}

// Gt adds a greater-than requirement.
func (q *Query) Gt(field string, value interface{}) *Query {
	return q.AddOperationRequirement(field, OperatorGreaterThan, value)
}

// GreaterThan is an alias for Gt.
func (q *Query) GreaterThan(field string, value interface{}) *Query {
	return q.Gt(field, value)
}

// Gte adds a greater-than-or-equal requirement.
func (q *Query) Gte(field string, value interface{}) *Query {
	return q.AddOperationRequirement(field, OperatorGreaterThanOrEqual, value)
}

// GreaterThanOrEqual is an alias for Gte.
func (q *Query) GreaterThanOrEqual(field string, value interface{}) *Query {
	return q.Gte(field, value)
}

// Lt adds a less-than requirement.
func (q *Query) Lt(field string, value interface{}) *Query {
	return q.AddOperationRequirement(field, OperatorLessThan, value)
}

// LessThan is an alias for Lt.
func (q *Query) LessThan(field string, value interface{}) *Query {
	return q.Lt(field, value)
}

// Lte adds a less-than-or-equal requirement.
func (q *Query) Lte(field string, value interface{}) *Query {
	return q.AddOperationRequirement(field, OperatorLessThanOrEqual, value)
}

// LessThanOrEqual is an alias for Lte.
func (q *Query) LessThanOrEqual(field string, value interface{}) *Query {
	return q.Lte(field, value)
}

// Contains adds a contains requirement.
func (q *Query) Contains(field string, value string) *Query {
	return q.AddOperationRequirement(field, OperatorContains, value)
}

// ContainsString is an alias for Contains.
func (q *Query) ContainsString(field string, value string) *Query {
	return q.Contains(field, value)
}

// ContainsWord is an alias for Contains.
func (q *Query) ContainsWord(field string, value string) *Query {
	return q.Contains(field, value)
}

// LocationWithin restricts results to entities within distance meters of a point.
func (q *Query) LocationWithin(distance, latitude, longitude float64) *Query {
	return q.addRequirement(fmt.Sprintf("location within %s of %s,%s",
		formatFloat(distance), formatFloat(latitude), formatFloat(longitude)))
}

// And joins the following requirement with "and". No-op on an empty query.
func (q *Query) And() *Query {
	return q.pushKeyword(keywordAnd)
}

// Or joins the following requirement with "or". No-op on an empty query.
func (q *Query) Or() *Query {
	return q.pushKeyword(keywordOr)
}

// Not negates the following requirement. No-op on an empty query.
func (q *Query) Not() *Query {
	return q.pushKeyword(keywordNot)
}

// Asc orders results by field ascending.
func (q *Query) Asc(field string) *Query {
	return q.Sort(field, SortAsc)
}

// Ascending is an alias for Asc.
func (q *Query) Ascending(field string) *Query {
	return q.Asc(field)
}

// Desc orders results by field descending.
func (q *Query) Desc(field string) *Query {
	return q.Sort(field, SortDesc)
}

// Descending is an alias for Desc.
func (q *Query) Descending(field string) *Query {
	return q.Desc(field)
}

// Sort orders results by field. Re-sorting a field replaces its direction.
func (q *Query) Sort(field string, order SortOrder) *Query {
	if _, exists := q.order[field]; !exists {
		q.orderFields = append(q.orderFields, field)
	}

	q.order[field] = order

	return q
}

// AddOperationRequirement appends "field OP value" to the top frame.
func (q *Query) AddOperationRequirement(field string, op Operator, value interface{}) *Query {
	return q.addRequirement(field + operatorSeparator(op) + string(op) + operatorSeparator(op) + formatValue(value))
}

// CollectionName returns the collection the query targets.
func (q *Query) CollectionName() string {
	return q.collection
}

// CursorValue returns the pagination cursor.
func (q *Query) CursorValue() string {
	return q.cursor
}

// LimitValue returns the page size.
func (q *Query) LimitValue() int {
	return q.limit
}

// Requirements returns the compiled requirement string.
func (q *Query) Requirements() string {
	frames := slices.Clone(q.requirements)

	if len(frames) > 0 && frames[0] == "" {
		frames = frames[1:]
	}

	for len(frames) > 0 && isKeyword(frames[0]) {
		frames = frames[1:]
	}

	slices.Reverse(frames)

	return strings.Join(frames, " ")
}

// Clause returns the filter clause passed as ql, without encoding.
func (q *Query) Clause() string {
	if q.fromString != nil {
		return *q.fromString
	}

	clause := selectAll
	if requirements := q.Requirements(); requirements != "" {
		clause += " where " + requirements
	}

	if len(q.orderFields) > 0 {
		orders := make([]string, 0, len(q.orderFields))
		for _, field := range q.orderFields {
			orders = append(orders, field+" "+string(q.order[field]))
		}

		clause += " order by " + strings.Join(orders, ",")
	}

	return clause
}

// Build compiles the query into a URL fragment beginning with "?", or ""
// when there is nothing to send.
func (q *Query) Build(urlEncode bool) string {
	encode := func(s string) string {
		if !urlEncode {
			return s
		}

		return EncodeQueryComponent(s)
	}

	if q.fromString != nil {
		return "?ql=" + encode(*q.fromString)
	}

	parts := make([]string, 0, len(q.urlTerms)+3)

	if q.limit != DefaultQueryLimit {
		parts = append(parts, "limit="+strconv.Itoa(q.limit))
	}

	parts = append(parts, q.urlTerms...)

	if q.cursor != "" {
		parts = append(parts, "cursor="+encode(q.cursor))
	}

	if clause := q.Clause(); clause != selectAll {
		parts = append(parts, "ql="+encode(clause))
	}

	if len(parts) == 0 {
		return ""
	}

	return "?" + strings.Join(parts, "&")
}

// String returns the URL-encoded fragment.
func (q *Query) String() string {
	return q.Build(true)
}

func (q *Query) addRequirement(requirement string) *Query {
	top := ""
	if len(q.requirements) > 0 {
		top = q.requirements[0]
		q.requirements = q.requirements[1:]
	}

	if top != "" {
		top += " " + keywordAnd + " "
	}

	q.requirements = slices.Insert(q.requirements, 0, top+requirement)

	return q
}

func (q *Query) pushKeyword(keyword string) *Query {
	if len(q.requirements) == 0 || q.requirements[0] == "" {
		return q
	}

	q.requirements = slices.Insert(q.requirements, 0, "", keyword)

	return q
}

func isKeyword(frame string) bool {
	return frame == keywordAnd || frame == keywordOr || frame == keywordNot
}

func operatorSeparator(op Operator) string {
	if op == OperatorContains {
		return " "
	}

	return ""
}

func formatValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		if IsUUID(v) {
			return v
		}

		return "'" + v + "'"
	case fmt.Stringer:
		return formatValue(v.String())
	case float64:
		return formatFloat(v)
	case float32:
		return formatFloat(float64(v))
	default:
		return fmt.Sprint(v)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// IsUUID reports whether s has the canonical 8-4-4-4-12 hex shape.
func IsUUID(s string) bool {
	if len(s) != 36 {
		return false
	}

	_, err := uuid.Parse(s)

	return err == nil
}

// EncodeQueryComponent percent-encodes s for use as a query value, using %20 for spaces.
func EncodeQueryComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
