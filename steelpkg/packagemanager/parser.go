package packagemanager

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Parsers in this file are pure functions of the command output. Lines
// that do not parse are skipped, never reported: a partially corrupt
// listing yields a partial result.

var (
	// Obsoleting Packages
	yumObsoletingRegexp = regexp.MustCompile(`(?i)^Obsoleting\sPackages`)

	// Example:
	//     Inst emacs23 [23.1+1-4ubuntu7] (23.1+1-4ubuntu7.1 Ubuntu:10.04/lucid-updates) []
	aptInstRegexp = regexp.MustCompile(`Inst (.+?) \[.+?\] \((.+?)\s(.+?)\)`)
)

// ParseYumCheckUpdate parses `yum -q check-update` output. Everything from
// the "Obsoleting Packages" section on is ignored.
func ParseYumCheckUpdate(output string) []OutdatedPackage {
	packages := []OutdatedPackage{}
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if yumObsoletingRegexp.MatchString(line) {
			break
		}
		if pkg, ok := parseYumLine(line); ok {
			packages = append(packages, pkg)
		}
	}
	return packages
}

// parseYumLine accepts "<package> <version> <repo>".
func parseYumLine(line string) (OutdatedPackage, bool) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return OutdatedPackage{}, false
	}
	return OutdatedPackage{Package: fields[0], Version: fields[1], Repo: fields[2]}, true
}

// ParseZypperListUpdates parses the table printed by
// `zypper -q list-updates`.
//
//	S | Repository | Name | Current Version | Available Version | Arch
//	--+------------+------+-----------------+-------------------+-----
//	v | Main       | curl | 8.0.1-1.1       | 8.1.0-1.1         | x86_64
func ParseZypperListUpdates(output string) []OutdatedPackage {
	packages := []OutdatedPackage{}
	for _, line := range strings.Split(output, "\n") {
		if pkg, ok := parseZypperLine(line); ok {
			packages = append(packages, pkg)
		}
	}
	return packages
}

func parseZypperLine(line string) (OutdatedPackage, bool) {
	if strings.HasPrefix(line, "--") || isZypperHeader(line) {
		return OutdatedPackage{}, false
	}

	// status | repo | name | current | available | arch
	fields := strings.Split(line, "|")
	if len(fields) < 5 {
		return OutdatedPackage{}, false
	}
	return OutdatedPackage{
		Package: strings.TrimSpace(fields[2]),
		Version: strings.TrimSpace(fields[4]),
		Repo:    strings.TrimSpace(fields[1]),
	}, true
}

func isZypperHeader(line string) bool {
	return len(line) > 1 && line[0] == 'S' && strings.ContainsRune(" \t\r\n\f\v", rune(line[1]))
}

// ParseAptSimulate parses `apt-get --simulate dist-upgrade` output. Only
// "Inst" lines carrying both the installed and the candidate version are
// reported.
func ParseAptSimulate(output string) []OutdatedPackage {
	packages := []OutdatedPackage{}
	for _, line := range strings.Split(output, "\n") {
		if pkg, ok := parseAptLine(line); ok {
			packages = append(packages, pkg)
		}
	}
	return packages
}

func parseAptLine(line string) (OutdatedPackage, bool) {
	if !strings.HasPrefix(line, "Inst") {
		return OutdatedPackage{}, false
	}
	m := aptInstRegexp.FindStringSubmatch(line)
	if m == nil {
		return OutdatedPackage{}, false
	}
	return OutdatedPackage{
		Package: strings.TrimSpace(m[1]),
		Version: strings.TrimSpace(m[2]),
		Repo:    strings.TrimSpace(m[3]),
	}, true
}

// PkgEntry is one package of a FreeBSD pkg inventory.
type PkgEntry struct {
	Version    string
	Repository string
}

// PkgInventory maps package names to their version and repository, keeping
// the order in which names first appeared.
type PkgInventory struct {
	names   []string
	entries map[string]PkgEntry
}

func (inv *PkgInventory) Names() []string {
	return inv.names
}

func (inv *PkgInventory) Get(name string) (PkgEntry, bool) {
	entry, ok := inv.entries[name]
	return entry, ok
}

// ParsePkgInventory parses "%n\t%v\t%R" lines as printed by `pkg query`
// and `pkg rquery`. A repeated name keeps its first position and its last
// value.
func ParsePkgInventory(output string) *PkgInventory {
	inv := &PkgInventory{entries: map[string]PkgEntry{}}
	for _, line := range splitLines(chomp(output)) {
		fields := strings.Split(line, "\t")
		name := fields[0]
		if name == "" {
			continue
		}

		var entry PkgEntry
		if len(fields) > 1 {
			entry.Version = fields[1]
		}
		if len(fields) > 2 {
			entry.Repository = fields[2]
		}

		if _, seen := inv.entries[name]; !seen {
			inv.names = append(inv.names, name)
		}
		inv.entries[name] = entry
	}
	return inv
}

// PkgOutdated lists the installed packages whose remote version or
// repository differs, in installed order.
func PkgOutdated(installed, available *PkgInventory) []OutdatedPackage {
	packages := []OutdatedPackage{}
	for _, name := range installed.Names() {
		local, _ := installed.Get(name)
		remote, ok := available.Get(name)
		if !ok || remote == local {
			continue
		}
		packages = append(packages, OutdatedPackage{
			Package: name,
			Version: remote.Version,
			Repo:    remote.Repository,
		})
	}
	return packages
}

// FormatPkgVersion mimics `pkg version` output for the outdated packages.
func FormatPkgVersion(installed *PkgInventory, outdated []OutdatedPackage) string {
	var b strings.Builder
	for _, pkg := range outdated {
		entry, _ := installed.Get(pkg.Package)
		local := fmt.Sprintf("%s-%s", pkg.Package, entry.Version)
		fmt.Fprintf(&b, "%-34s <   needs updating (remote has %s)\n", local, pkg.Version)
	}
	return b.String()
}

// CountRPM counts the non-empty lines of `rpm -qa`.
func CountRPM(output string) string {
	count := 0
	for _, line := range strings.Split(output, "\n") {
		if line != "" {
			count++
		}
	}
	return strconv.Itoa(count)
}

// CountDPKG counts the installed ("ii") lines of `dpkg --list`.
func CountDPKG(output string) string {
	return strconv.Itoa(len(dpkgInstalled(output)))
}

// CountPkg counts the lines of `pkg query '%n'`.
func CountPkg(output string) string {
	return strconv.Itoa(len(splitLines(chomp(output))))
}

// ChecksumRPM is the MD5 of the `rpm -qa` output as captured.
func ChecksumRPM(output string) string {
	return md5Hex(output)
}

// ChecksumDPKG is the MD5 of the installed lines of `dpkg --list`, joined
// by newlines.
func ChecksumDPKG(output string) string {
	return md5Hex(strings.Join(dpkgInstalled(output), "\n"))
}

// ChecksumPkg is the MD5 of the `pkg query '%n'` output without its
// trailing newline.
func ChecksumPkg(output string) string {
	return md5Hex(chomp(output))
}

func dpkgInstalled(output string) []string {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, "ii") {
			lines = append(lines, line)
		}
	}
	return lines
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// chomp removes a single trailing line terminator.
func chomp(s string) string {
	switch {
	case strings.HasSuffix(s, "\r\n"):
		return s[:len(s)-2]
	case strings.HasSuffix(s, "\n"), strings.HasSuffix(s, "\r"):
		return s[:len(s)-1]
	}
	return s
}

// splitLines splits on newlines and drops trailing empty lines.
func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
