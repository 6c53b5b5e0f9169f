package cmd

import (
	"os"

	"forest-tools/metatools"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// newProgress draws a bar on a terminal and logs every tenth of the work otherwise.
func newProgress(desc string) func(total int) metatools.Progress {
	return func(total int) metatools.Progress {
		if stderrIsTerminal() && !viper.GetBool("debug") {
			return progressbar.Default(int64(total), desc)
		}
		return &logProgress{desc: desc, total: total}
	}
}

type logProgress struct {
	desc  string
	total int
	done  int
}

func (p *logProgress) Add(n int) error {
	step := p.total / 10
	if step == 0 {
		step = 1
	}
	before := p.done / step
	p.done += n
	if p.done/step != before || p.done == p.total {
		logrus.Infof("%s: %d/%d", p.desc, p.done, p.total)
	}
	return nil
}
