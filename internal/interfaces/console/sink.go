package console

import (
	"fmt"
	"io"
	"os"

	"nvcompare/internal/application/port"
	"nvcompare/internal/application/usecase/view"
	"nvcompare/internal/domain/model"
)

// Sink prints one timestamped line per published view snapshot.
type Sink struct {
	out       io.Writer
	formatter *view.Formatter
}

func NewSink(color bool) port.Sink {
	return &Sink{out: os.Stdout, formatter: view.NewFormatter(color)}
}

func (s *Sink) Publish(snap model.ViewSnapshot) error {
	ts := snap.UpdatedAt
	if ts.IsZero() {
		_, err := fmt.Fprintln(s.out, s.formatter.Render(snap))
		return err
	}
	_, err := fmt.Fprintf(s.out, "%s %s\n", ts.Local().Format("2006-01-02 15:04:05"), s.formatter.Render(snap))
	return err
}
