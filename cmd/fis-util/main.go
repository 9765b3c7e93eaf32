// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jaypipes/pcidb"
	flags "github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"k8s.io/klog/v2"

	"github.com/Seagate/nvdimm-fis/pkg/fis"
	"github.com/Seagate/nvdimm-fis/pkg/ndctl"
	"github.com/Seagate/nvdimm-fis/pkg/nfit"
)

var Version = "1.0.0"

// This variable is filled in during the linker step - -ldflags "-X main.buildTime=`date -u '+%Y-%m-%dT%H:%M:%S'`"
var buildTime = ""

var helptxt = `
fis-util is a command line tool to discover NVDIMMs and run firmware interface commands on them.

Usage:
./fis-util [--version] [--help] [--list] [--commands] [--handle=0xHANDLE --cmd=NAME] [--passphrase=P] [--new-passphrase=P]
           [--format=json|yaml] [--dump=DIR] [--replay=FILE] [--config=FILE] [--sysfs=DIR] [--nfit=FILE] [--verbosity=0]

Which:
	version         : Print the version of this application and exit
	help            : Print the help text and exit
	list            : List the NVDIMMs described by the ACPI NFIT
	commands        : List the supported firmware commands
	handle=0xHANDLE : NFIT device handle of the DIMM to send the command to
	cmd=NAME        : Run the firmware command by name and print the decoded response. Need to use with --handle
	passphrase      : Current passphrase for the security commands
	new-passphrase  : New passphrase for set_passphrase
	format          : Output format of decoded responses, json or yaml
	dump=DIR        : Record the raw responses of the command to a yaml file in DIR
	replay=FILE     : Answer the command from a recording instead of the device
	config=FILE     : Read settings from a yaml config file, flags override it
	sysfs=DIR       : Root of the sysfs tree used to find nmem devices
	nfit=FILE       : Path of the NFIT table
	verbosity       : Set the log level verbosity, where 0 is no longing and 4 is very verbose
`

const (
	DefaultVerbosity = "0" // Default log level
)

type Settings struct {
	Version       bool   `long:"version" description:"Print the version of this application and exit"`
	Help          bool   `long:"help" short:"h" description:"Print the help text and exit"`
	Verbosity     string `long:"verbosity" description:"Log level verbosity"`
	Config        string `long:"config" description:"Yaml config file"`
	List          bool   `long:"list" description:"List the NVDIMMs described by the NFIT"`
	Commands      bool   `long:"commands" description:"List the supported firmware commands"`
	Handle        string `long:"handle" description:"NFIT device handle of the target DIMM"`
	Cmd           string `long:"cmd" description:"Firmware command name"`
	Passphrase    string `long:"passphrase" description:"Current passphrase"`
	NewPassphrase string `long:"new-passphrase" description:"New passphrase"`
	Format        string `long:"format" choice:"json" choice:"yaml" description:"Output format"`
	Dump          string `long:"dump" description:"Directory receiving the raw response recording"`
	Replay        string `long:"replay" description:"Recording to replay instead of the device"`
	SysfsRoot     string `long:"sysfs" description:"Root of the sysfs tree"`
	Nfit          string `long:"nfit" description:"Path of the NFIT table"`
}

// InitContext: initialize the settings using command line args
func (s *Settings) InitContext(args []string, ctx context.Context) (context.Context, error) {
	p := flags.NewParser(s, flags.None)
	rest, err := p.ParseArgs(args[1:])
	if err != nil {
		return ctx, err
	}
	if len(rest) != 0 {
		return ctx, errors.Errorf("unexpected arguments %v", rest)
	}
	if len(args) == 1 {
		s.Help = true
	}
	return ctx, nil
}

// setVerbosity applies the log level to klog
func setVerbosity(v string) error {
	fs := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(fs)
	return fs.Set("v", v)
}

func parseHandle(s string) (fis.DeviceHandle, error) {
	if !strings.HasPrefix(strings.ToLower(s), "0x") {
		s = "0x" + s
	}
	h, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "bad device handle %q", s)
	}
	return fis.DeviceHandle(h), nil
}

func main() {
	code := run(context.Background(), os.Args, os.Stdout, afero.NewOsFs())
	klog.Flush()
	os.Exit(code)
}

func run(ctx context.Context, args []string, out io.Writer, fs afero.Fs) int {
	// Extract settings and initialize context using command line args
	settings := Settings{}
	ctx, err := settings.InitContext(args, ctx)
	if err != nil {
		fmt.Fprintf(out, "ERROR: parsing parameters, err=%v\n", err)
		return 1
	}

	cfg, err := LoadConfig(fs, settings.Config)
	if err != nil {
		fmt.Fprintf(out, "ERROR: %v\n", err)
		return 1
	}
	cfg.apply(&settings)

	if err := setVerbosity(cfg.Verbosity); err != nil {
		fmt.Fprintf(out, "ERROR: verbosity %q, err=%v\n", cfg.Verbosity, err)
		return 1
	}

	// fis-util banner
	klog.V(1).InfoS("fis-util", "args", strings.Join(args[1:], " "))
	klog.V(2).InfoS("fis-util", "settings", settings, "config", cfg)

	if settings.Version {
		fmt.Fprintln(out, "[] fis-util", "version", Version, "build", buildTime)
		return 0
	}

	if settings.Help {
		fmt.Fprint(out, helptxt)
		return 0
	}

	if settings.Commands {
		printCommands(out)
	}

	if settings.List {
		if err := listDimms(out, fs, cfg); err != nil {
			fmt.Fprintf(out, "ERROR: %v\n", err)
			return 1
		}
	}

	if settings.Cmd != "" {
		return runCommand(ctx, out, fs, cfg, &settings)
	}
	return 0
}

func printCommands(out io.Writer) {
	prFmt := "%36s | %6s | %5s | %5s | %6s\n"
	fmt.Fprintf(out, "Supported firmware commands: %d\n", len(fis.Commands))
	fmt.Fprintf(out, prFmt, "Name", "Opcode", "Kind", "In", "Out")
	for _, c := range fis.Commands {
		outSize := strconv.Itoa(c.OutputSize)
		if c.LargeOutput != 0 {
			outSize = "large"
		}
		fmt.Fprintf(out, prFmt, c.Name, fmt.Sprintf("0x%04X", c.Code()), c.Kind, strconv.Itoa(c.InputSize), outSize)
	}
}

// vendorName looks the vendor id up in the PCI id database, falling back to hex
func vendorName(db *pcidb.PCIDB, id uint16) string {
	key := fmt.Sprintf("%04x", id)
	if db != nil {
		if v, ok := db.Vendors[key]; ok {
			name := v.Name
			if len(name) > 17 {
				name = name[:17] + "..."
			}
			return name
		}
	}
	return "0x" + key
}

func listDimms(out io.Writer, fs afero.Fs, cfg *Config) error {
	tbl, err := nfit.ReadTable(fs, cfg.NfitTable)
	if err != nil {
		klog.V(1).InfoS("fis-util.listDimms no NFIT, listing nmem devices", "err", err)
		return listNmems(out, fs, cfg)
	}
	dimms, err := tbl.Dimms()
	if err != nil {
		return err
	}

	db, err := pcidb.New()
	if err != nil {
		klog.V(2).InfoS("fis-util.listDimms no pci id database", "err", err)
		db = nil
	}

	prFmt := "%10s | %20s | %8s | %6s | %10s | %10s \n"
	fmt.Fprintf(out, "Print the list of NVDIMMs. Total devices found: %d\n", len(dimms))
	fmt.Fprintf(out, prFmt, "Handle", "Vendor", "Device", "Rev", "SN", "Capacity")
	for _, d := range dimms {
		fmt.Fprintf(out, prFmt,
			fmt.Sprintf("0x%04X", uint32(d.Handle)),
			vendorName(db, d.VendorID),
			fmt.Sprintf("0x%04X", d.DeviceID),
			fmt.Sprintf("0x%02X", d.RevisionID),
			fmt.Sprintf("0x%08X", d.SerialNumber),
			humanize.IBytes(d.RegionSize))
	}
	return nil
}

func listNmems(out io.Writer, fs afero.Fs, cfg *Config) error {
	nmems, err := ndctl.NewResolver(fs, cfg.SysfsRoot, cfg.DevRoot).List()
	if err != nil {
		return err
	}
	prFmt := "%10s | %10s | %16s \n"
	fmt.Fprintf(out, "Print the list of nmem devices. Total devices found: %d\n", len(nmems))
	fmt.Fprintf(out, prFmt, "Handle", "Name", "Device")
	for _, n := range nmems {
		fmt.Fprintf(out, prFmt, fmt.Sprintf("0x%04X", uint32(n.Handle)), n.Name, n.Path)
	}
	return nil
}

func newTransport(fs afero.Fs, cfg *Config, replay string) (fis.Transport, error) {
	if replay != "" {
		rec, err := fis.LoadRecording(fs, replay)
		if err != nil {
			return nil, err
		}
		return fis.NewReplayTransport(rec), nil
	}
	return fis.NewPassthrough(ndctl.NewResolver(fs, cfg.SysfsRoot, cfg.DevRoot)), nil
}

func runCommand(ctx context.Context, out io.Writer, fs afero.Fs, cfg *Config, s *Settings) int {
	if s.Handle == "" {
		fmt.Fprintf(out, "ERROR: --cmd needs --handle\n")
		return 1
	}
	h, err := parseHandle(s.Handle)
	if err != nil {
		fmt.Fprintf(out, "ERROR: %v\n", err)
		return 1
	}
	t, err := newTransport(fs, cfg, s.Replay)
	if err != nil {
		fmt.Fprintf(out, "ERROR: %v\n", err)
		return 1
	}

	var rec *fis.Recorder
	if cfg.DumpDir != "" {
		rec = fis.NewRecorder(t)
		t = rec
	}

	res, err := fis.NewClient(t).Run(ctx, h, s.Cmd, s.Passphrase, s.NewPassphrase)

	if rec != nil {
		path := filepath.Join(cfg.DumpDir, fmt.Sprintf("fis-%04x-%s.yaml", uint32(h), strings.ToLower(s.Cmd)))
		if err := fs.MkdirAll(cfg.DumpDir, 0o755); err != nil {
			fmt.Fprintf(out, "ERROR: %v\n", err)
		} else if err := fis.SaveRecording(fs, path, rec.Recording()); err != nil {
			fmt.Fprintf(out, "ERROR: %v\n", err)
		}
	}

	if err != nil {
		printCommandError(out, err)
		return 1
	}
	if res == nil {
		fmt.Fprintf(out, "%s: %s\n", s.Cmd, fis.Success)
		return 0
	}
	if err := fis.PrintTable(out, res, cfg.OutputFormat); err != nil {
		fmt.Fprintf(out, "ERROR: %v\n", err)
		return 1
	}

	switch v := res.(type) {
	case *fis.IdentifyDimm:
		fmt.Fprintf(out, "\nRaw capacity: %s\n", v.Capacity())
	case *fis.DimmPartitionInfo:
		fmt.Fprintf(out, "\nCapacities:\n")
		if err := fis.PrintTable(out, v.Capacities(), cfg.OutputFormat); err != nil {
			fmt.Fprintf(out, "ERROR: %v\n", err)
			return 1
		}
	}
	return 0
}

func printCommandError(out io.Writer, err error) {
	fmt.Fprintf(out, "ERROR: %v\n", err)
	var ce *fis.CommandError
	if errors.As(err, &ce) && ce.Kind != fis.KindParse {
		fmt.Fprint(out, ce.Status.Message())
	}
}
