package updater

import (
	"archive/tar"
	"archive/zip"
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/maxvaer/netsweep/pkg/version"
)

const (
	repoOwner     = "maxvaer"
	repoName      = "netsweep"
	checksumsName = "checksums.txt"
)

// ErrNoAsset is returned when a release has no build for this platform.
var ErrNoAsset = errors.New("no release asset for this platform")

type githubRelease struct {
	TagName string        `json:"tag_name"`
	Assets  []githubAsset `json:"assets"`
}

type githubAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Updater replaces the running binary with the latest GitHub release.
type Updater struct {
	APIURL  string
	Client  *http.Client
	GOOS    string
	GOARCH  string
	Current string
	Log     io.Writer
}

// New returns an Updater for this binary's release channel.
func New() *Updater {
	return &Updater{
		APIURL:  "https://api.github.com/repos/" + repoOwner + "/" + repoName + "/releases/latest",
		Client:  &http.Client{Timeout: 120 * time.Second},
		GOOS:    runtime.GOOS,
		GOARCH:  runtime.GOARCH,
		Current: version.Version,
		Log:     os.Stderr,
	}
}

// Update checks GitHub for the latest release and replaces the current binary.
func Update(ctx context.Context) error {
	return New().Run(ctx)
}

// Run performs the update check and, if newer, the replacement.
func (u *Updater) Run(ctx context.Context) error {
	fmt.Fprintf(u.Log, "[*] Current version: %s\n", u.Current)
	fmt.Fprintf(u.Log, "[*] Checking for updates...\n")

	release, err := u.latestRelease(ctx)
	if err != nil {
		return fmt.Errorf("checking for updates: %w", err)
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	current := strings.TrimPrefix(u.Current, "v")
	if current != "dev" && latest == current {
		fmt.Fprintf(u.Log, "[+] Already up to date (%s)\n", u.Current)
		return nil
	}
	fmt.Fprintf(u.Log, "[*] New version available: %s -> %s\n", u.Current, release.TagName)

	asset, err := findAsset(release.Assets, u.GOOS, u.GOARCH)
	if err != nil {
		return err
	}

	fmt.Fprintf(u.Log, "[*] Downloading %s...\n", asset.Name)
	archive, err := u.download(ctx, asset.BrowserDownloadURL)
	if err != nil {
		return fmt.Errorf("downloading update: %w", err)
	}

	if sums := findByName(release.Assets, checksumsName); sums != nil {
		list, err := u.download(ctx, sums.BrowserDownloadURL)
		if err != nil {
			return fmt.Errorf("downloading checksums: %w", err)
		}
		if err := verifyChecksum(list, asset.Name, archive); err != nil {
			return err
		}
	}

	bin, err := extract(asset.Name, archive, binaryName(u.GOOS))
	if err != nil {
		return err
	}
	if err := replaceBinary(bin); err != nil {
		return fmt.Errorf("replacing binary: %w", err)
	}

	fmt.Fprintf(u.Log, "[+] Updated to %s\n", release.TagName)
	return nil
}

func (u *Updater) latestRelease(ctx context.Context) (*githubRelease, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.APIURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := u.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("no releases found at %s/%s", repoOwner, repoName)
	default:
		return nil, fmt.Errorf("GitHub API returned %d", resp.StatusCode)
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	return &release, nil
}

func (u *Updater) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := u.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download returned %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// findAsset matches the goreleaser naming conventions
// netsweep_<os>_<arch> and netsweep-<os>-<arch>.
func findAsset(assets []githubAsset, goos, goarch string) (*githubAsset, error) {
	patterns := []string{
		fmt.Sprintf("%s_%s_%s", repoName, goos, goarch),
		fmt.Sprintf("%s-%s-%s", repoName, goos, goarch),
	}
	for i := range assets {
		name := strings.ToLower(assets[i].Name)
		for _, pattern := range patterns {
			if strings.Contains(name, pattern) {
				return &assets[i], nil
			}
		}
	}

	names := make([]string, len(assets))
	for i, a := range assets {
		names[i] = a.Name
	}
	return nil, fmt.Errorf("%w: %s/%s (available: %s)", ErrNoAsset, goos, goarch, strings.Join(names, ", "))
}

func findByName(assets []githubAsset, name string) *githubAsset {
	for i := range assets {
		if assets[i].Name == name {
			return &assets[i]
		}
	}
	return nil
}

// verifyChecksum checks data against the "<sha256>  <name>" line for name
// in a checksums file.
func verifyChecksum(list []byte, name string, data []byte) error {
	sc := bufio.NewScanner(bytes.NewReader(list))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 2 || fields[1] != name {
			continue
		}
		sum := sha256.Sum256(data)
		if !strings.EqualFold(fields[0], hex.EncodeToString(sum[:])) {
			return fmt.Errorf("checksum mismatch for %s", name)
		}
		return nil
	}
	return fmt.Errorf("no checksum listed for %s", name)
}

func binaryName(goos string) string {
	if goos == "windows" {
		return repoName + ".exe"
	}
	return repoName
}

func extract(assetName string, data []byte, binary string) ([]byte, error) {
	name := strings.ToLower(assetName)
	switch {
	case strings.HasSuffix(name, ".zip"):
		return extractZip(data, binary)
	case strings.HasSuffix(name, ".tar.gz") || strings.HasSuffix(name, ".tgz"):
		return extractTarGz(data, binary)
	default:
		// Assume the asset is a raw binary.
		return data, nil
	}
}

func extractZip(data []byte, binary string) ([]byte, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	for _, f := range r.File {
		if !strings.EqualFold(filepath.Base(f.Name), binary) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("binary %q not found in zip archive", binary)
}

func extractTarGz(data []byte, binary string) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if filepath.Base(hdr.Name) == binary && hdr.Typeflag == tar.TypeReg {
			return io.ReadAll(tr)
		}
	}
	return nil, fmt.Errorf("binary %q not found in tar.gz archive", binary)
}

func replaceBinary(newBin []byte) error {
	execPath, err := os.Executable()
	if err != nil {
		return err
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return err
	}

	oldPath := execPath + ".old"
	_ = os.Remove(oldPath)

	if err := os.Rename(execPath, oldPath); err != nil {
		return fmt.Errorf("renaming current binary: %w", err)
	}
	if err := os.WriteFile(execPath, newBin, 0o755); err != nil {
		_ = os.Rename(oldPath, execPath)
		return fmt.Errorf("writing new binary: %w", err)
	}

	// Fails on Windows while the old binary is still running.
	_ = os.Remove(oldPath)
	return nil
}
