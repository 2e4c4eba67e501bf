package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/peterh/liner"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/salesbook/internal/app"
	"github.com/vladislavdragonenkov/salesbook/internal/health"
	"github.com/vladislavdragonenkov/salesbook/internal/sales"
)

// testCLI запускает CLI во временном каталоге с фиксированным временем.
type testCLI struct {
	t   *testing.T
	Dir string
	Env map[string]string
	Now time.Time
}

func newCLI(t *testing.T) *testCLI {
	t.Helper()
	return &testCLI{
		t:   t,
		Dir: t.TempDir(),
		Env: map[string]string{},
		Now: time.Date(2024, 3, 5, 14, 7, 9, 0, time.Local),
	}
}

func quietLogger() *log.Logger {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger
}

func mustConfig(t *testing.T, dir string) app.Config {
	t.Helper()
	cfg, err := app.LoadConfig(app.LoadConfigInput{WorkDir: dir})
	require.NoError(t, err)
	return cfg
}

func (c *testCLI) options() []sales.OrderOption {
	return []sales.OrderOption{sales.WithClock(func() time.Time { return c.Now })}
}

func (c *testCLI) Run(args ...string) (string, string, int) {
	var out, errOut bytes.Buffer
	full := append([]string{"salesbook", "--cwd", c.Dir}, args...)
	code := run(context.Background(), &out, &errOut, full, c.Env, c.options())
	return out.String(), errOut.String(), code
}

func (c *testCLI) MustRun(args ...string) string {
	c.t.Helper()
	stdout, stderr, code := c.Run(args...)
	require.Equal(c.t, 0, code, "stderr: %s", stderr)
	return stdout
}

func (c *testCLI) MustFail(args ...string) string {
	c.t.Helper()
	_, stderr, code := c.Run(args...)
	require.Equal(c.t, 1, code)
	return stderr
}

func (c *testCLI) seed() {
	c.t.Helper()
	c.MustRun("customers", "add", "--last", "Иванов", "--first", "Иван", "--middle", "Петрович",
		"--phone", "+7(999)123-45-67", "--email", "ivanov@mail.ru")
	c.MustRun("customers", "add", "--last", "Smith", "--first", "John", "--phone", "89991234567")
	c.MustRun("products", "add", "--name", "Чай", "--price", "120.50", "--unit", "шт")
	c.MustRun("products", "add", "--name", "Сахар", "--price", "75", "--unit", "кг")
}

func TestRun_UsageWithoutCommand(t *testing.T) {
	c := newCLI(t)
	out := c.MustRun()
	assert.Contains(t, out, "Usage: salesbook")
	assert.Contains(t, out, "orders create")
	assert.Contains(t, out, "stats network")
}

func TestRun_UnknownCommand(t *testing.T) {
	c := newCLI(t)
	stderr := c.MustFail("frobnicate")
	assert.Contains(t, stderr, "unknown command: frobnicate")

	stderr = c.MustFail("customers", "frobnicate")
	assert.Contains(t, stderr, "unknown command: customers frobnicate")
}

func TestRun_GroupWithoutSubcommandShowsGroupHelp(t *testing.T) {
	c := newCLI(t)
	out := c.MustRun("orders")
	assert.Contains(t, out, "orders sort")
	assert.NotContains(t, out, "customers add")
}

func TestCustomers_AddListSearchDelete(t *testing.T) {
	c := newCLI(t)
	c.seed()

	out := c.MustRun("customers", "list")
	assert.Contains(t, out, "Иванов")
	assert.Contains(t, out, "Smith")

	out = c.MustRun("customers", "search", "петрович")
	assert.Contains(t, out, "Иванов")
	assert.NotContains(t, out, "Smith")

	assert.Equal(t, "Deleted customer 2\n", c.MustRun("customers", "delete", "2"))
	assert.NotContains(t, c.MustRun("customers", "list"), "Smith")

	data, err := os.ReadFile(filepath.Join(c.Dir, "customers.csv"))
	require.NoError(t, err)
	assert.Equal(t,
		"id,last_name,first_name,middle_name,phone,email\n1,Иванов,Иван,Петрович,+7(999)123-45-67,ivanov@mail.ru\n",
		string(data))
}

func TestCustomers_AddReportsEveryViolation(t *testing.T) {
	c := newCLI(t)
	stderr := c.MustFail("customers", "add", "--phone", "123", "--email", "bad")

	for _, msg := range []string{"invalid customers", "last_name is required", "first_name is required", "phone has invalid format", "email has invalid format"} {
		assert.Contains(t, stderr, msg)
	}
}

func TestCustomers_DeleteWithOrdersRefused(t *testing.T) {
	c := newCLI(t)
	c.seed()
	c.MustRun("orders", "create", "--customer", "1", "--item", "1:1")

	stderr := c.MustFail("customers", "delete", "1")
	assert.Contains(t, stderr, "customer has orders")
}

func TestProducts_SearchAndDelete(t *testing.T) {
	c := newCLI(t)
	c.seed()

	out := c.MustRun("products", "search", "КГ")
	assert.Contains(t, out, "Сахар")
	assert.NotContains(t, out, "Чай")

	c.MustRun("products", "delete", "1")
	assert.NotContains(t, c.MustRun("products", "list"), "Чай")

	assert.Contains(t, c.MustFail("products", "delete", "1"), "record not found")
	assert.Contains(t, c.MustFail("products", "add", "--name", "x", "--price", "free", "--unit", "шт"), "price must be a number")
}

func TestOrders_CreateItemsAndSort(t *testing.T) {
	c := newCLI(t)
	c.seed()

	out := c.MustRun("orders", "create", "--customer", "1", "--item", "1:2", "--item", "2:3")
	assert.Equal(t, "Created order 1: 2 items, total 466.00\n", out)

	c.Now = c.Now.Add(time.Hour)
	c.MustRun("orders", "create", "--customer", "2", "--item", "2:1")

	out = c.MustRun("orders", "items", "1")
	assert.Contains(t, out, "Order 1 from 2024-03-05 14:07:09")
	assert.Contains(t, out, "Customer: Иванов Иван Петрович - +7(999)123-45-67 - ivanov@mail.ru")
	assert.Contains(t, out, "241.00")
	assert.Contains(t, out, "225.00")

	out = c.MustRun("orders", "sort", "--by", "amount")
	assert.Less(t, strings.Index(out, "75.00"), strings.Index(out, "466.00"))

	out = c.MustRun("orders", "sort", "--by", "amount", "--desc")
	assert.Less(t, strings.Index(out, "466.00"), strings.Index(out, "75.00"))

	assert.Contains(t, c.MustFail("orders", "sort", "--by", "price"), "unsupported sort key")

	out = c.MustRun("orders", "list", "--customer", "2")
	assert.Contains(t, out, "75.00")
	assert.NotContains(t, out, "466.00")

	out = c.MustRun("orders", "list", "--since", "2024-03-06")
	assert.NotContains(t, out, "466.00")
}

func TestOrders_CreateErrorsWriteNothing(t *testing.T) {
	c := newCLI(t)
	c.seed()

	assert.Contains(t, c.MustFail("orders", "create", "--customer", "1", "--item", "1"), "item must be")
	assert.Contains(t, c.MustFail("orders", "create", "--customer", "1", "--item", "9:1"), "product not found")
	assert.Contains(t, c.MustFail("orders", "create", "--customer", "1", "--item", "1:0"), "quantity must be greater than zero")
	assert.Contains(t, c.MustFail("orders", "create", "--customer", "7", "--item", "1:1"), "customer not found")
	assert.Contains(t, c.MustFail("orders", "create", "--customer", "1"), "at least one item")

	data, err := os.ReadFile(filepath.Join(c.Dir, "orders.csv"))
	require.NoError(t, err)
	assert.Equal(t, "id,customer_id,total_amount,order_date,customer_info\n", string(data))
}

func TestImportExport(t *testing.T) {
	c := newCLI(t)
	c.seed()
	c.MustRun("orders", "create", "--customer", "1", "--item", "1:1")

	jsonPath := filepath.Join(c.Dir, "out", "customers.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(jsonPath), 0o755))
	assert.Equal(t, "Exported 2 customers to "+jsonPath+"\n", c.MustRun("export", "customers", jsonPath))

	raw, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "    {\n        \"id\": \"1\",\n        \"last_name\": \"Иванов\"")

	csvPath := filepath.Join(c.Dir, "out", "items.csv")
	c.MustRun("export", "order_items", csvPath)
	raw, err = os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, "id,order_id,product_id,quantity,price,total\n1,1,1,1,120.50,120.50\n", string(raw))

	other := newCLI(t)
	assert.Equal(t, "Imported 2 customers\n", other.MustRun("import", "customers", jsonPath))
	assert.Contains(t, other.MustRun("customers", "list"), "Smith")

	assert.Contains(t, other.MustFail("import", "orders", jsonPath), "unknown entity")
	assert.Contains(t, other.MustFail("import", "products", filepath.Join(c.Dir, "missing.csv")), "no such file")
	assert.Contains(t, other.MustFail("import", "products", csvPath), "required field is missing")
}

func TestExport_EmptyJSONIsArray(t *testing.T) {
	c := newCLI(t)
	path := filepath.Join(c.Dir, "products.json")
	c.MustRun("export", "products", path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(raw))
}

func TestStats(t *testing.T) {
	c := newCLI(t)
	c.seed()
	c.MustRun("orders", "create", "--customer", "2", "--item", "1:1")
	c.MustRun("orders", "create", "--customer", "1", "--item", "1:1", "--item", "2:1")
	c.Now = c.Now.Add(24 * time.Hour)
	c.MustRun("orders", "create", "--customer", "1", "--item", "2:2")

	out := c.MustRun("stats", "top", "--limit", "1")
	assert.Contains(t, out, "Иванов И.П.")
	assert.NotContains(t, out, "Smith")

	out = c.MustRun("stats", "daily")
	assert.Contains(t, out, "2024-03-05  2")
	assert.Contains(t, out, "2024-03-06  1")

	out = c.MustRun("stats", "network")
	assert.Contains(t, out, "Smith J.")
	assert.Contains(t, out, "Иванов И.П.")

	assert.Contains(t, c.MustFail("stats", "top", "--limit", "0"), "--limit must be positive")
}

func TestCheck(t *testing.T) {
	c := newCLI(t)

	out := c.MustRun("check")
	var report health.Response
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, health.StatusDegraded, report.Status)

	c.MustRun("customers", "list")
	require.NoError(t, json.Unmarshal([]byte(c.MustRun("check")), &report))
	assert.Equal(t, health.StatusHealthy, report.Status)

	require.NoError(t, os.WriteFile(filepath.Join(c.Dir, "products.csv"), []byte("sku,title\n"), 0o644))
	_, _, code := c.Run("check")
	assert.Equal(t, 1, code)
}

func TestGlobalFlagsAndConfig(t *testing.T) {
	c := newCLI(t)
	require.NoError(t, os.WriteFile(filepath.Join(c.Dir, "salesbook.json"),
		[]byte(`{"data_dir": "data", /* комментарий */ "metrics_file": "m.prom"}`), 0o644))

	c.MustRun("products", "add", "--name", "Чай", "--price", "1", "--unit", "шт")
	_, err := os.Stat(filepath.Join(c.Dir, "data", "products.csv"))
	require.NoError(t, err)

	metrics, err := os.ReadFile(filepath.Join(c.Dir, "m.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `salesbook_store_records{store="products"} 1`)

	c.MustRun("--data-dir", "other", "customers", "list")
	_, err = os.Stat(filepath.Join(c.Dir, "other", "customers.csv"))
	require.NoError(t, err)

	c.Env["SALESBOOK_LOG_FORMAT"] = "yaml"
	assert.Contains(t, c.MustFail("customers", "list"), "log_format")
}

func TestVersion(t *testing.T) {
	out := newCLI(t).MustRun("version")
	assert.True(t, strings.HasPrefix(out, "salesbook version="), out)
}

func TestCommandHelp(t *testing.T) {
	out := newCLI(t).MustRun("orders", "create", "--help")
	assert.Contains(t, out, "Usage: salesbook orders create --customer <id>")
	assert.Contains(t, out, "--item")
}

// scriptEditor отдаёт заранее заданные строки вместо терминала.
type scriptEditor struct {
	lines   []string
	history []string
	closed  bool
}

func (e *scriptEditor) Prompt(string) (string, error) {
	if len(e.lines) == 0 {
		return "", io.EOF
	}
	line := e.lines[0]
	e.lines = e.lines[1:]
	return line, nil
}

func (e *scriptEditor) AppendHistory(item string) { e.history = append(e.history, item) }

func (e *scriptEditor) Close() error {
	e.closed = true
	return nil
}

func TestShell_RunsCommandsInOneSession(t *testing.T) {
	c := newCLI(t)
	c.seed()

	editor := &scriptEditor{lines: []string{
		`customers search "иван петрович"`,
		`customers search петрович`,
		``,
		`orders create --customer 1 --item 2:1`,
		`orders bogus`,
		`shell`,
		`products add --name "Unclosed`,
		`orders list`,
		`exit`,
		`version`,
	}}

	var out, errOut bytes.Buffer
	o := NewIO(&out, &errOut)
	s := &session{cfg: mustConfig(t, c.Dir), logger: quietLogger(), opts: c.options(), newEditor: func() lineEditor { return editor }}
	code := s.dispatch(context.Background(), o, []string{"shell"})
	require.NoError(t, s.close())

	assert.Equal(t, 0, code, errOut.String())
	assert.True(t, editor.closed)
	assert.Equal(t, []string{"version"}, editor.lines, "exit stops the loop")
	assert.Len(t, editor.history, 8)
	assert.Contains(t, out.String(), "Created order 1")
	assert.Contains(t, errOut.String(), "unknown command: orders bogus")
	assert.Contains(t, errOut.String(), "already in shell")
	assert.Contains(t, errOut.String(), errUnterminatedQuote.Error())
}

func TestShell_StopsOnContextCancel(t *testing.T) {
	c := newCLI(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &session{cfg: mustConfig(t, c.Dir), logger: quietLogger(), newEditor: func() lineEditor {
		return &scriptEditor{lines: []string{"version"}}
	}}
	var out bytes.Buffer
	code := s.dispatch(ctx, NewIO(&out, &out), []string{"shell"})
	require.NoError(t, s.close())
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), context.Canceled.Error())
}

func TestSplitLine(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{in: "customers list", want: []string{"customers", "list"}},
		{in: `  customers   search  "Иванов Иван"  `, want: []string{"customers", "search", "Иванов Иван"}},
		{in: `products add --name 'Кофе "Арабика"'`, want: []string{"products", "add", "--name", `Кофе "Арабика"`}},
		{in: `search ""`, want: []string{"search", ""}},
	}
	for _, tc := range cases {
		got, err := splitLine(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := splitLine(`search "open`)
	require.ErrorIs(t, err, errUnterminatedQuote)
}

func TestHistoryEditor_PersistsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".salesbook_history")
	logger, hook := logtest.NewNullLogger()

	editor := &historyEditor{State: &liner.State{}, path: path, logger: logger.WithField("component", "shell")}
	editor.AppendHistory("customers list")
	editor.AppendHistory("orders sort --by amount")
	editor.saveHistory()

	restored := &historyEditor{State: &liner.State{}, path: path, logger: logger.WithField("component", "shell")}
	restored.loadHistory()

	var buf bytes.Buffer
	_, err := restored.WriteHistory(&buf)
	require.NoError(t, err)
	assert.Equal(t, "customers list\norders sort --by amount\n", buf.String())
	assert.Empty(t, hook.AllEntries())
}

func TestHistoryEditor_LogsIOFailures(t *testing.T) {
	dir := t.TempDir()
	logger, hook := logtest.NewNullLogger()

	missing := &historyEditor{State: &liner.State{}, path: filepath.Join(dir, "nope"), logger: logger.WithField("component", "shell")}
	missing.loadHistory()
	assert.Empty(t, hook.AllEntries(), "a missing history file is not an error")

	unreadable := &historyEditor{State: &liner.State{}, path: dir, logger: logger.WithField("component", "shell")}
	unreadable.loadHistory()
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, log.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "cannot read shell history", hook.LastEntry().Message)
	hook.Reset()

	unwritable := &historyEditor{State: &liner.State{}, path: filepath.Join(dir, "no", "such", "dir", "history"), logger: logger.WithField("component", "shell")}
	unwritable.AppendHistory("version")
	unwritable.saveHistory()
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "cannot write shell history", hook.LastEntry().Message)
	assert.Equal(t, unwritable.path, hook.LastEntry().Data["file"])
}
