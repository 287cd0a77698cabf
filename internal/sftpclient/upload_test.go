package sftpclient

import (
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"

	"enrollment-insights/internal/config"

	"github.com/pkg/sftp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memServer returns a client talking to an in-memory SFTP server.
func memServer(t *testing.T) *sftp.Client {
	t.Helper()
	serverConn, clientConn := net.Pipe()

	srv := sftp.NewRequestServer(serverConn, sftp.InMemHandler())
	go func() { _ = srv.Serve() }()

	cli, err := sftp.NewClientPipe(clientConn, clientConn)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = cli.Close()
		_ = srv.Close()
	})
	return cli
}

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestUpload(t *testing.T) {
	cli := memServer(t)
	a := writeTemp(t, "city_stats.csv", "CITY\r\nBaltimore\r\n")
	b := writeTemp(t, "views.json", `{"kpis":{}}`)

	require.NoError(t, upload(context.Background(), cli, "/inbound/enrollment", []string{a, b}))

	f, err := cli.Open("/inbound/enrollment/city_stats.csv")
	require.NoError(t, err)
	defer f.Close()
	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "CITY\r\nBaltimore\r\n", string(got))

	_, err = cli.Stat("/inbound/enrollment/views.json")
	assert.NoError(t, err)
}

func TestUploadCollectsEveryFailure(t *testing.T) {
	cli := memServer(t)
	good := writeTemp(t, "kpis.csv", "TOTAL\r\n1\r\n")

	err := upload(context.Background(), cli, "/out", []string{"missing-1.csv", good, "missing-2.csv"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing-1.csv")
	assert.Contains(t, err.Error(), "missing-2.csv")

	_, statErr := cli.Stat("/out/kpis.csv")
	assert.NoError(t, statErr, "good file still uploaded")
}

func TestUploadFilesValidation(t *testing.T) {
	err := UploadFiles(context.Background(), Config{}, []string{"x"})
	assert.EqualError(t, err, "sftp: missing env SFTP_HOST / SFTP_USER / SFTP_PASS")

	err = UploadFiles(context.Background(), Config{Host: "h", User: "u", Pass: "p"}, nil)
	assert.ErrorContains(t, err, "SFTP_KNOWN_HOSTS")
}

func TestUploadFilesDialCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := UploadFiles(ctx, Config{Host: "192.0.2.1", User: "u", Pass: "p", InsecureIgnoreHostKey: true}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFromConfig(t *testing.T) {
	c := config.Default()
	c.SFTPHost = "drop.example.org"
	c.SFTPUser = "etl"

	got := FromConfig(c).withDefaults()
	assert.Equal(t, "drop.example.org", got.Host)
	assert.Equal(t, 22, got.Port)
	assert.Equal(t, "/inbound", got.RemoteDir)
	assert.True(t, got.InsecureIgnoreHostKey)

	assert.Equal(t, "/", Config{}.withDefaults().RemoteDir)
}
