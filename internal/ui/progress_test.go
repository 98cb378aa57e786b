package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"ktp/internal/domain"
)

func TestProgressBar_CountsFinishedItems(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressBar(3, &buf)

	p.Report(domain.Outcome{Status: domain.StatusStarted})
	p.Report(domain.Outcome{Status: domain.StatusPassed})
	p.Report(domain.Outcome{Status: domain.StatusFailed})
	p.Finish()

	passed, failed := p.Counts()
	assert.Equal(t, 1, passed)
	assert.Equal(t, 1, failed)
	assert.NotEmpty(t, buf.String())
}
