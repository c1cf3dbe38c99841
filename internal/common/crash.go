// -----------------------------------------------------------------------
// Crash Protection - fatal panic capture to a crash file
// -----------------------------------------------------------------------

package common

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// crashDir is where crash reports land. Set once at startup.
var crashDir = "./logs"

// InstallCrashHandler sets the crash report directory and makes sure it
// exists. Call once at the start of main, paired with a deferred
// RecoverWithCrashFile.
func InstallCrashHandler(dir string) {
	if dir != "" {
		crashDir = dir
	}
	if err := os.MkdirAll(crashDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "crash handler: cannot create %s: %v\n", crashDir, err)
	}
}

// RecoverWithCrashFile recovers a panic, writes a crash report and exits
// non-zero. Intended as `defer common.RecoverWithCrashFile()` in main.
func RecoverWithCrashFile() {
	r := recover()
	if r == nil {
		return
	}

	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	writeCrashFile(r, string(buf[:n]))
	os.Exit(1)
}

func writeCrashFile(panicVal interface{}, stack string) {
	var report bytes.Buffer
	fmt.Fprintf(&report, "COVERSCRIBE CRASH REPORT\n")
	fmt.Fprintf(&report, "Time: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&report, "Version: %s\n\n", GetFullVersion())
	fmt.Fprintf(&report, "Panic: %v\n\n", panicVal)
	fmt.Fprintf(&report, "%s\n", stack)
	fmt.Fprintf(&report, "--- all goroutines ---\n%s\n", allGoroutineStacks())

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	fmt.Fprintf(&report, "--- runtime ---\ngoroutines=%d alloc=%dMB sys=%dMB gc=%d\n",
		runtime.NumGoroutine(), mem.Alloc/1024/1024, mem.Sys/1024/1024, mem.NumGC)

	path := filepath.Join(crashDir, fmt.Sprintf("crash-%s.log", time.Now().Format("2006-01-02T15-04-05")))
	if err := os.WriteFile(path, report.Bytes(), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "crash handler: cannot write %s: %v\n%s", path, err, report.String())
		return
	}

	fmt.Fprintf(os.Stderr, "\nFATAL: panic captured, report written to %s\nPanic: %v\n", path, panicVal)
}

// allGoroutineStacks dumps every goroutine, growing the buffer until the
// dump fits.
func allGoroutineStacks() string {
	buf := make([]byte, 64*1024)
	for {
		n := runtime.Stack(buf, true)
		if n < len(buf) {
			return string(buf[:n])
		}
		if len(buf) >= 16*1024*1024 {
			return string(buf[:n])
		}
		buf = make([]byte, len(buf)*2)
	}
}
