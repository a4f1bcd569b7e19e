package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks an organize run depends on: the input tree must
// be readable and the output root writable with some headroom.
func RunAll(inputDir, outputDir string) []Result {
	return []Result{
		CheckDirectoryReadable("Input directory", inputDir),
		CheckDirectoryAccess("Output directory", outputDir),
		CheckFreeSpace("Output free space", outputDir),
	}
}

// AllPassed reports whether every result succeeded.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// CheckDirectoryReadable verifies that the directory exists and can be
// listed.
func CheckDirectoryReadable(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read ok)", path)}
}

// CheckDirectoryAccess verifies that the directory exists and is
// readable/writable. A missing output root passes; the driver creates it.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// minFreeBytes is the copy headroom required before a run starts. One
// evening's capture rarely exceeds a few gigabytes; this only catches
// obviously full disks.
const minFreeBytes = 1 << 30

// CheckFreeSpace verifies the filesystem holding path has copy headroom.
// A path that does not exist yet is checked at its nearest existing parent
// via statfs semantics; here a missing path simply passes.
func CheckFreeSpace(name, path string) Result {
	var fs unix.Statfs_t
	if err := unix.Statfs(path, &fs); err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (not yet created)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := fs.Bavail * uint64(fs.Bsize)
	if free < minFreeBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %d MiB free)", path, free>>20)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d GiB free)", path, free>>30)}
}
