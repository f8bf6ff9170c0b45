package updater

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tarGz(t *testing.T, name string, body []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Mode: 0o755, Size: int64(len(body)), Typeflag: tar.TypeReg}))
	_, err := tw.Write(body)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func TestFindAsset(t *testing.T) {
	assets := []githubAsset{
		{Name: "checksums.txt"},
		{Name: "netsweep_darwin_arm64.tar.gz"},
		{Name: "netsweep_linux_amd64.tar.gz"},
		{Name: "netsweep-windows-amd64.zip"},
	}

	a, err := findAsset(assets, "linux", "amd64")
	require.NoError(t, err)
	assert.Equal(t, "netsweep_linux_amd64.tar.gz", a.Name)

	a, err = findAsset(assets, "windows", "amd64")
	require.NoError(t, err)
	assert.Equal(t, "netsweep-windows-amd64.zip", a.Name)

	_, err = findAsset(assets, "plan9", "386")
	assert.ErrorIs(t, err, ErrNoAsset)
}

func TestExtractTarGz(t *testing.T) {
	archive := tarGz(t, "netsweep_1.0/netsweep", []byte("ELF"))
	bin, err := extract("netsweep_linux_amd64.tar.gz", archive, "netsweep")
	require.NoError(t, err)
	assert.Equal(t, []byte("ELF"), bin)

	_, err = extract("x.tgz", archive, "other")
	assert.Error(t, err)
}

func TestExtractZip(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("NETSWEEP.EXE")
	require.NoError(t, err)
	_, err = w.Write([]byte("MZ"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	bin, err := extract("netsweep_windows_amd64.zip", buf.Bytes(), "netsweep.exe")
	require.NoError(t, err)
	assert.Equal(t, []byte("MZ"), bin)
}

func TestExtractRawBinary(t *testing.T) {
	bin, err := extract("netsweep_linux_amd64", []byte("raw"), "netsweep")
	require.NoError(t, err)
	assert.Equal(t, []byte("raw"), bin)
}

func TestVerifyChecksum(t *testing.T) {
	data := []byte("archive bytes")
	sum := sha256.Sum256(data)
	list := []byte(fmt.Sprintf("deadbeef  other.tar.gz\n%s  netsweep_linux_amd64.tar.gz\n", hex.EncodeToString(sum[:])))

	assert.NoError(t, verifyChecksum(list, "netsweep_linux_amd64.tar.gz", data))
	assert.Error(t, verifyChecksum(list, "netsweep_linux_amd64.tar.gz", []byte("tampered")))
	assert.Error(t, verifyChecksum(list, "missing.tar.gz", data))
}

func TestRunAlreadyUpToDate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tag_name":"v1.2.0","assets":[]}`)
	}))
	defer srv.Close()

	var log bytes.Buffer
	u := &Updater{APIURL: srv.URL, Client: srv.Client(), GOOS: "linux", GOARCH: "amd64", Current: "1.2.0", Log: &log}
	require.NoError(t, u.Run(context.Background()))
	assert.Contains(t, log.String(), "Already up to date")
}

func TestRunNoAssetForPlatform(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tag_name":"v2.0.0","assets":[{"name":"netsweep_linux_amd64.tar.gz","browser_download_url":"http://invalid"}]}`)
	}))
	defer srv.Close()

	u := &Updater{APIURL: srv.URL, Client: srv.Client(), GOOS: "freebsd", GOARCH: "arm", Current: "1.0.0", Log: io.Discard}
	assert.ErrorIs(t, u.Run(context.Background()), ErrNoAsset)
}

func TestRunReleaseNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	u := &Updater{APIURL: srv.URL, Client: srv.Client(), Current: "dev", Log: io.Discard}
	err := u.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no releases found")
}
