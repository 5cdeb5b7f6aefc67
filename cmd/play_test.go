package cmd

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Taichi-iskw/idcable/internal/player"
)

func TestFormatSnapshot(t *testing.T) {
	tests := []struct {
		name string
		snap player.Snapshot
		want string
	}{
		{
			name: "closed",
			snap: player.Snapshot{State: player.StateClosed},
			want: "[closed]",
		},
		{
			name: "opening",
			snap: player.Snapshot{State: player.StateOpening, Visible: true, Title: "Apple News", Meta: "news • US"},
			want: "[opening] Apple News (news • US)",
		},
		{
			name: "retrying through the proxy",
			snap: player.Snapshot{State: player.StateOpening, Visible: true, Title: "Apple News", Meta: "news • US", Proxied: true},
			want: "[opening] Apple News (news • US) via proxy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatSnapshot(tt.snap))
		})
	}
}

func TestSyncWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &syncWriter{w: &buf}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = w.Write([]byte("x\n"))
		}()
	}
	wg.Wait()

	assert.Len(t, buf.String(), 40)
}

func TestRootCommand_Subcommands(t *testing.T) {
	var names []string
	for _, sub := range rootCmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"browse", "channel", "favorite", "region", "category", "play", "config", "db"} {
		assert.Contains(t, names, want)
	}
}
