package output

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_Decision_Format(t *testing.T) {
	// Given: a plain writer
	buf := &bytes.Buffer{}
	w := New(buf)

	// When: writing decisions
	w.Decision("Include [.ext]", true, "", "./a.c")
	w.Decision("Include [mime]", true, "text/x-shellscript", "./configure")
	w.Decision("Exclude [----]", false, "text/plain", "./notes.txt")

	// Then: the MIME column is padded to 29 characters
	want := "Include [.ext]: " + strings.Repeat(" ", 29) + " ./a.c\n" +
		"Include [mime]: text/x-shellscript            ./configure\n" +
		"Exclude [----]: text/plain                    ./notes.txt\n"
	assert.Equal(t, want, buf.String())
}

func TestWriter_Decision_LongMIMENotTruncated(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	long := "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	w.Decision("Exclude [----]", false, long, "x.docx")

	assert.Equal(t, "Exclude [----]: "+long+" x.docx\n", buf.String())
}

func TestWriter_ListEntry(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.ListEntry(0, "file", "*")
	w.ListEntry(1, "xdg-mime", "")
	w.ListEntry(2, "other", "!")

	assert.Equal(t, "[0] file (*)\n[1] xdg-mime\n[2] other (!)\n", buf.String())
}

func TestWriter_HeaderAndPath(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Header("Classifier", "file")
	w.Path("./src/main.c")
	w.Newline()

	assert.Equal(t, "Classifier: file\n./src/main.c\n\n", buf.String())
}

func TestWriter_Status(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"PASS", "[PASS] cscope: found\n"},
		{"WARN", "[WARN] cscope: found\n"},
		{"FAIL", "[FAIL] cscope: found\n"},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			buf := &bytes.Buffer{}
			New(buf).Status(tt.tag, "cscope", "found")
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWriter_ConcurrentLinesStayWhole(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				w.Decision("Include [.ext]", true, "", fmt.Sprintf("g%d/%d.c", g, i))
			}
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 800)
	for _, l := range lines {
		assert.True(t, strings.HasPrefix(l, "Include [.ext]: "), l)
		assert.True(t, strings.HasSuffix(l, ".c"), l)
	}
}

func TestWithColor_ForcesStyles(t *testing.T) {
	// Given: a non-terminal buffer with color forced on
	buf := &bytes.Buffer{}
	w := New(buf, WithColor(true))

	// Then: the writer carries the colored palette
	assert.Equal(t, DefaultStyles().Pass.GetForeground(), w.Styles().Pass.GetForeground())

	// And forcing it off returns the plain palette
	plain := New(buf, WithColor(false))
	assert.Equal(t, NoColorStyles().Pass.GetForeground(), plain.Styles().Pass.GetForeground())
}

func TestIsTTY(t *testing.T) {
	assert.False(t, IsTTY(nil))
	assert.False(t, IsTTY(&bytes.Buffer{}))

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, IsTTY(f))
	assert.False(t, ShouldColor(f))
}

func TestDetectNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.True(t, DetectNoColor())
}
