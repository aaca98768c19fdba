package script

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHost(t *testing.T, opts ...Option) (*Host, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	opts = append([]Option{WithOutput(&out, &out)}, opts...)
	return New(opts...), &out
}

func TestRun_ImportsCalculator(t *testing.T) {
	h, out := newTestHost(t)

	src := `import (
	"errors"
	"fmt"

	"calculator"
)

func main() {
	fmt.Println(calculator.Add(2, 3))
	fmt.Println(calculator.Sub(5, 3))
	fmt.Println(calculator.Mul(4, 2.5))
	q, _ := calculator.Div(10, 2)
	fmt.Println(q)

	_, err := calculator.Div(1, 0)
	fmt.Println(err)
	fmt.Println(errors.Is(err, calculator.ErrDivisionByZero))

	_, err = calculator.Call("add", "x", 1)
	fmt.Println(calculator.KindOf(err))
}
`
	require.NoError(t, h.Run(context.Background(), "demo", src))
	assert.Equal(t, "5\n2\n10\n5\ndiv: Cannot divide by zero\ntrue\nInvalidArgument\n", out.String())
}

func TestRun_ForbiddenImport(t *testing.T) {
	h, _ := newTestHost(t)

	err := h.Run(context.Background(), "evil", `import "os"

func main() { os.Exit(1) }
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forbidden imports")
}

func TestRun_SyntaxError(t *testing.T) {
	h, _ := newTestHost(t)

	err := h.Run(context.Background(), "broken", `func main() {`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestRun_Timeout(t *testing.T) {
	h, _ := newTestHost(t, WithTimeout(100*time.Millisecond))

	err := h.Run(context.Background(), "slow", `import "time"

func main() {
	for {
		time.Sleep(10 * time.Millisecond)
	}
}
`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "expected deadline error, got %v", err)
}

func TestExpr(t *testing.T) {
	h, _ := newTestHost(t)

	cases := []struct {
		expr string
		want float64
	}{
		{`calculator.Add(2.0, 3.0)`, 5},
		{`calculator.Sub(5.0, 3.0)`, 2},
		{`calculator.Mul(4.0, 2.5)`, 10},
		{`calculator.Add(calculator.Mul(2, 3), 1)`, 7},
	}

	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := h.Expr(context.Background(), tc.expr)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExpr_RejectsNonExpressions(t *testing.T) {
	h, _ := newTestHost(t)
	marker := filepath.Join(t.TempDir(), "marker")
	require.NoError(t, os.WriteFile(marker, nil, 0o644))

	cases := []string{
		"import \"os\"\nvar _ = os.Remove(" + strconv.Quote(marker) + ")",
		"x := calculator.Add(1, 2)",
		"calculator.Add(1, 2); calculator.Sub(1, 2)",
	}
	for _, src := range cases {
		_, err := h.Expr(context.Background(), src)
		require.Error(t, err, src)
		assert.Contains(t, err.Error(), "not a single expression")
	}
	assert.FileExists(t, marker)
}

func TestExpr_NonNumericResult(t *testing.T) {
	h, _ := newTestHost(t)

	_, err := h.Expr(context.Background(), `"five"`)
	require.Error(t, err)
}
