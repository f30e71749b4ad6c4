// Command dcmictl inspects Huawei NPU cards through the DCMI management
// library: inventory, asset data, health, one-shot telemetry and virtual
// chip partitioning.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/npu-tools/go-dcmi/internal/inventory"
	"github.com/npu-tools/go-dcmi/internal/telemetry"
	"github.com/npu-tools/go-dcmi/internal/version"
	"github.com/npu-tools/go-dcmi/pkg/dcmi"
	"github.com/npu-tools/go-dcmi/pkg/dcmi/raw"
)

var (
	buildVersion = "dev"
	buildCommit  = ""
	buildTime    = ""
)

func main() {
	version.Set(version.Info{
		Version:   buildVersion,
		Commit:    buildCommit,
		BuildTime: buildTime,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rootCommand() *cli.Command {
	return &cli.Command{
		Name:  "dcmictl",
		Usage: "Inspect Huawei NPU cards through the DCMI management library",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "lib-dir",
				Usage:   "directory containing libdcmi.so",
				Value:   raw.DefaultLibraryDir,
				Sources: cli.EnvVars("DCMICTL_LIB_DIR", raw.EnvLibraryDir),
			},
			&cli.StringFlag{
				Name:    "backend",
				Usage:   "library loading backend (dynamic or linked)",
				Value:   "dynamic",
				Sources: cli.EnvVars("DCMICTL_BACKEND"),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output format (text, json or yaml)",
				Value:   "text",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			versionCommand(),
			listCommand(),
			infoCommand(),
			healthCommand(),
			telemetryCommand(),
			vchipCommand(),
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show build metadata and, when reachable, library versions",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			report := versionReport{Client: version.Current()}

			// Library versions are best effort: version must keep working
			// on hosts without the management library installed.
			if session, err := openSession(cmd); err == nil {
				if v, err := session.DCMIVersion(); err == nil {
					report.DCMIVersion = v
				}
				if v, err := session.DriverVersion(); err == nil {
					report.DriverVersion = v
				}
			} else {
				cliLogger(cmd).Debug("management library unavailable", "err", err)
			}

			return render(cmd, report, func() error {
				fmt.Printf("dcmictl %s", report.Client.Version)
				if report.Client.Commit != "" {
					fmt.Printf(" (%s)", report.Client.Commit)
				}
				fmt.Println()
				fmt.Printf("built with %s for %s\n", report.Client.GoVersion, report.Client.Platform)
				if report.DCMIVersion != "" {
					fmt.Printf("dcmi version %s\n", report.DCMIVersion)
				}
				if report.DriverVersion != "" {
					fmt.Printf("driver version %s\n", report.DriverVersion)
				}
				return nil
			})
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List cards and chips visible to the management library",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			session, err := openSession(cmd)
			if err != nil {
				return err
			}

			devices, err := inventory.Discover(session, cliLogger(cmd))
			if err != nil {
				return err
			}

			return render(cmd, devices, func() error {
				w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tUNIT\tCHIP\tPCI\tPRODUCT")
				for _, dev := range devices {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						dev.ID, dev.Unit, orDash(dev.ChipName), orDash(dev.PCIAddress), orDash(dev.MarketName))
				}
				return w.Flush()
			})
		},
	}
}

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Show library versions, or asset data for one device",
		ArgsUsage: "[device-id]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			session, err := openSession(cmd)
			if err != nil {
				return err
			}

			if cmd.Args().Len() == 0 {
				report, err := collectLibraryInfo(session, cliLogger(cmd))
				if err != nil {
					return err
				}
				return render(cmd, report, func() error {
					w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
					fmt.Fprintf(w, "dcmi version\t%s\n", orDash(report.DCMIVersion))
					fmt.Fprintf(w, "driver version\t%s\n", orDash(report.DriverVersion))
					fmt.Fprintf(w, "cards\t%d\n", report.Cards)
					fmt.Fprintf(w, "chips\t%d\n", report.Chips)
					return w.Flush()
				})
			}

			cardID, chipID, err := parseDeviceID(cmd.Args().First())
			if err != nil {
				return err
			}

			report, err := collectChipInfo(session, cardID, chipID)
			if err != nil {
				return err
			}
			return render(cmd, report, func() error {
				w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
				fmt.Fprintf(w, "device\t%s\n", report.Device)
				fmt.Fprintf(w, "chip\t%s %s %s\n", report.Chip.Type, report.Chip.Name, report.Chip.Version)
				fmt.Fprintf(w, "ai cores\t%d\n", report.Chip.AICoreCount)
				if report.PCIAddress != "" {
					fmt.Fprintf(w, "pci\t%s\n", report.PCIAddress)
				}
				if report.Board != nil {
					fmt.Fprintf(w, "board\tid=%#x pcb=%#x bom=%#x slot=%d\n",
						report.Board.BoardID, report.Board.PCBID, report.Board.BOMID, report.Board.SlotID)
				}
				if report.ELabel != nil {
					fmt.Fprintf(w, "product\t%s\n", orDash(report.ELabel.ProductName))
					fmt.Fprintf(w, "model\t%s\n", orDash(report.ELabel.Model))
					fmt.Fprintf(w, "manufacturer\t%s\n", orDash(report.ELabel.Manufacturer))
					fmt.Fprintf(w, "serial\t%s\n", orDash(report.ELabel.SerialNumber))
				}
				if report.NDie != "" {
					fmt.Fprintf(w, "ndie\t%s\n", report.NDie)
				}
				if report.VDie != "" {
					fmt.Fprintf(w, "vdie\t%s\n", report.VDie)
				}
				for i, flash := range report.Flash {
					health := "healthy"
					if !flash.IsHealthy {
						health = "unhealthy"
					}
					fmt.Fprintf(w, "flash %d\tid=%#x vendor=%#x size=%d %s\n",
						i, flash.FlashID, flash.Vendor, flash.Size, health)
				}
				return w.Flush()
			})
		},
	}
}

func healthCommand() *cli.Command {
	return &cli.Command{
		Name:      "health",
		Usage:     "Report health state and fault codes",
		ArgsUsage: "[device-id]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			session, err := openSession(cmd)
			if err != nil {
				return err
			}

			devices, err := targetDevices(session, cmd)
			if err != nil {
				return err
			}

			reports := collectHealth(session, devices)
			return render(cmd, reports, func() error {
				w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tHEALTH\tFAULTS")
				for _, report := range reports {
					faults := "-"
					for i, fault := range report.Faults {
						line := fmt.Sprintf("%#08x", fault.Code)
						if fault.Message != "" {
							line += " " + fault.Message
						}
						if i == 0 {
							faults = line
							continue
						}
						faults += "; " + line
					}
					fmt.Fprintf(w, "%s\t%s\t%s\n", report.Device, report.Health, faults)
				}
				return w.Flush()
			})
		},
	}
}

func telemetryCommand() *cli.Command {
	return &cli.Command{
		Name:      "telemetry",
		Usage:     "Sample chip telemetry",
		ArgsUsage: "[device-id]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "count",
				Usage: "number of samples to take, 0 to run until interrupted",
				Value: 1,
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "delay between samples",
				Value: time.Second,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			session, err := openSession(cmd)
			if err != nil {
				return err
			}

			devices, err := targetDevices(session, cmd)
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				return fmt.Errorf("no NPU chips discovered")
			}

			logger := cliLogger(cmd)
			readers := make([]*telemetry.Reader, 0, len(devices))
			for _, dev := range devices {
				chip := session.CardByID(dev.CardID).ChipByID(dev.ChipID)
				readers = append(readers, telemetry.NewReader(dev.ID, chip, logger.With("device_id", dev.ID)))
			}

			count := int(cmd.Int("count"))
			interval := cmd.Duration("interval")
			if interval <= 0 {
				interval = time.Second
			}

			for i := 0; count == 0 || i < count; i++ {
				if i > 0 {
					select {
					case <-ctx.Done():
						return nil
					case <-time.After(interval):
					}
				}

				samples := make([]telemetry.Sample, 0, len(readers))
				for _, reader := range readers {
					samples = append(samples, reader.Sample())
				}

				if err := render(cmd, samples, func() error {
					return printSamples(samples)
				}); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func vchipCommand() *cli.Command {
	return &cli.Command{
		Name:  "vchip",
		Usage: "Manage virtual chip partitions",
		Commands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Carve a virtual chip out of an NPU",
				ArgsUsage: "device-id",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "template",
						Usage:    "vendor template naming the compute/memory split (e.g. vir02)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "vchip-id",
						Usage: "virtual chip id, or auto to let the library choose",
						Value: "auto",
					},
					&cli.StringFlag{
						Name:  "group",
						Usage: "virtual function group id, or auto",
						Value: "auto",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cardID, chipID, err := parseDeviceID(cmd.Args().First())
					if err != nil {
						return err
					}

					spec := dcmi.NewVChipSpec(cmd.String("template"))
					if spec.VChipID, err = parseVChipID(cmd.String("vchip-id")); err != nil {
						return err
					}
					if spec.VFGID, err = parseVChipID(cmd.String("group")); err != nil {
						return err
					}

					session, err := openSession(cmd)
					if err != nil {
						return err
					}

					out, err := session.CardByID(cardID).ChipByID(chipID).CreateVChip(spec)
					if err != nil {
						return err
					}
					return render(cmd, out, func() error {
						fmt.Printf("created vchip %d in group %d on card%d-chip%d\n",
							out.VChipID, out.VFGID, cardID, chipID)
						return nil
					})
				},
			},
			{
				Name:      "destroy",
				Usage:     "Destroy one virtual chip, or all of them",
				ArgsUsage: "device-id",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "vchip-id",
						Usage: "virtual chip id to destroy",
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "destroy every virtual chip on the device",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cardID, chipID, err := parseDeviceID(cmd.Args().First())
					if err != nil {
						return err
					}

					id := uint32(dcmi.VChipDestroyAll)
					if !cmd.Bool("all") {
						raw := cmd.String("vchip-id")
						if raw == "" {
							return fmt.Errorf("either --vchip-id or --all is required")
						}
						parsed, err := strconv.ParseUint(raw, 10, 32)
						if err != nil {
							return fmt.Errorf("invalid vchip id %q", raw)
						}
						id = uint32(parsed)
					}

					session, err := openSession(cmd)
					if err != nil {
						return err
					}

					if err := session.CardByID(cardID).ChipByID(chipID).DestroyVChip(id); err != nil {
						return err
					}
					if cmd.Bool("all") {
						fmt.Printf("destroyed all vchips on card%d-chip%d\n", cardID, chipID)
					} else {
						fmt.Printf("destroyed vchip %d on card%d-chip%d\n", id, cardID, chipID)
					}
					return nil
				},
			},
		},
	}
}

type versionReport struct {
	Client        version.Info `json:"client"`
	DCMIVersion   string       `json:"dcmi_version,omitempty"`
	DriverVersion string       `json:"driver_version,omitempty"`
}

type libraryReport struct {
	DCMIVersion   string `json:"dcmi_version"`
	DriverVersion string `json:"driver_version"`
	Cards         int    `json:"cards"`
	Chips         int    `json:"chips"`
}

type chipReport struct {
	Device     string               `json:"device"`
	Chip       dcmi.ChipInfo        `json:"chip"`
	PCIAddress string               `json:"pci_address,omitempty"`
	PCI        *dcmi.DomainPCIEInfo `json:"pci,omitempty"`
	Board      *dcmi.BoardInfo      `json:"board,omitempty"`
	ELabel     *dcmi.ELabelInfo     `json:"elabel,omitempty"`
	NDie       string               `json:"ndie,omitempty"`
	VDie       string               `json:"vdie,omitempty"`
	Flash      []dcmi.FlashInfo     `json:"flash,omitempty"`
}

type healthReport struct {
	Device string        `json:"device"`
	Health string        `json:"health"`
	Faults []faultReport `json:"faults"`
}

type faultReport struct {
	Code    uint32 `json:"code"`
	Message string `json:"message,omitempty"`
}

func collectLibraryInfo(session *dcmi.Session, logger *slog.Logger) (libraryReport, error) {
	report := libraryReport{}

	if v, err := session.DCMIVersion(); err == nil {
		report.DCMIVersion = v
	} else {
		logger.Debug("dcmi version unavailable", "err", err)
	}
	if v, err := session.DriverVersion(); err == nil {
		report.DriverVersion = v
	} else {
		logger.Debug("driver version unavailable", "err", err)
	}

	devices, err := inventory.Discover(session, logger)
	if err != nil {
		return libraryReport{}, err
	}
	cards := make(map[uint32]struct{})
	for _, dev := range devices {
		cards[dev.CardID] = struct{}{}
	}
	report.Cards = len(cards)
	report.Chips = len(devices)
	return report, nil
}

func collectChipInfo(session *dcmi.Session, cardID, chipID uint32) (chipReport, error) {
	chip := session.CardByID(cardID).ChipByID(chipID)

	info, err := chip.Info()
	if err != nil {
		return chipReport{}, fmt.Errorf("chip info: %w", err)
	}

	report := chipReport{
		Device: fmt.Sprintf("card%d-chip%d", cardID, chipID),
		Chip:   info,
	}

	// Asset queries are best effort, older firmware rejects some of them.
	if pcie, err := chip.DomainPCIEInfo(); err == nil {
		report.PCI = &pcie
	} else if base, err := chip.PCIEInfo(); err == nil {
		report.PCI = &dcmi.DomainPCIEInfo{PCIEInfo: base}
	}
	if report.PCI != nil {
		report.PCIAddress = fmt.Sprintf("%04x:%02x:%02x.%x",
			uint32(report.PCI.Domain), report.PCI.BDFBusID, report.PCI.BDFDeviceID, report.PCI.BDFFuncID)
	}
	if board, err := chip.BoardInfo(); err == nil {
		report.Board = &board
	}
	if elabel, err := chip.ELabelInfo(); err == nil {
		report.ELabel = &elabel
	}
	if die, err := chip.DieInfo(dcmi.NDie); err == nil {
		report.NDie = die.String()
	}
	if die, err := chip.DieInfo(dcmi.VDie); err == nil {
		report.VDie = die.String()
	}
	if count, err := chip.FlashCount(); err == nil {
		for id := uint32(0); id < count; id++ {
			flash, err := chip.FlashInfo(id)
			if err != nil {
				break
			}
			report.Flash = append(report.Flash, flash)
		}
	}
	return report, nil
}

func collectHealth(session *dcmi.Session, devices []inventory.Device) []healthReport {
	reports := make([]healthReport, 0, len(devices))
	for _, dev := range devices {
		chip := session.CardByID(dev.CardID).ChipByID(dev.ChipID)
		report := healthReport{Device: dev.ID, Faults: []faultReport{}}

		state, err := chip.Health()
		switch {
		case errors.Is(err, dcmi.ErrDeviceNotExist):
			report.Health = "missing"
			reports = append(reports, report)
			continue
		case err != nil:
			report.Health = "unknown"
			reports = append(reports, report)
			continue
		default:
			report.Health = state.String()
		}

		codes, err := chip.ErrorCodes()
		if err != nil {
			reports = append(reports, report)
			continue
		}
		for _, code := range codes {
			fault := faultReport{Code: code}
			if desc, err := chip.ErrorDescription(code, false); err == nil {
				fault.Message = desc
			}
			report.Faults = append(report.Faults, fault)
		}
		reports = append(reports, report)
	}
	return reports
}

// targetDevices resolves the optional device-id argument: one device when
// given, every NPU chip otherwise.
func targetDevices(session *dcmi.Session, cmd *cli.Command) ([]inventory.Device, error) {
	if cmd.Args().Len() > 0 {
		cardID, chipID, err := parseDeviceID(cmd.Args().First())
		if err != nil {
			return nil, err
		}
		return []inventory.Device{{
			ID:     fmt.Sprintf("card%d-chip%d", cardID, chipID),
			CardID: cardID,
			ChipID: chipID,
			Unit:   dcmi.UnitNPU.String(),
		}}, nil
	}

	devices, err := inventory.Discover(session, cliLogger(cmd))
	if err != nil {
		return nil, err
	}
	npus := devices[:0]
	for _, dev := range devices {
		if dev.IsNPU() {
			npus = append(npus, dev)
		}
	}
	return npus, nil
}

func openSession(cmd *cli.Command) (*dcmi.Session, error) {
	backend, err := dcmi.ParseBackend(cmd.String("backend"))
	if err != nil {
		return nil, err
	}
	return dcmi.New(
		dcmi.WithBackend(backend),
		dcmi.WithLibraryDir(cmd.String("lib-dir")),
	)
}

func cliLogger(cmd *cli.Command) *slog.Logger {
	level := slog.LevelWarn
	if cmd.Bool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// render writes v as JSON or YAML per the --output flag, or falls back to
// the text renderer. YAML goes through the JSON tags so both formats agree
// on key names.
func render(cmd *cli.Command, v any, text func() error) error {
	switch cmd.String("output") {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return err
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(doc)
	case "text", "":
		return text()
	default:
		return fmt.Errorf("unknown output format %q", cmd.String("output"))
	}
}

func printSamples(samples []telemetry.Sample) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	for _, sample := range samples {
		fmt.Fprintf(w, "%s\t%s\n", sample.DeviceID, sample.Timestamp.Format(time.RFC3339))
		m := sample.Metrics
		fmt.Fprintf(w, "  power\t%s\n", fmtFloat(m.PowerW, "W"))
		fmt.Fprintf(w, "  temperature\t%s\n", fmtFloat(m.TempC, "C"))
		fmt.Fprintf(w, "  voltage\t%s\n", fmtFloat(m.VoltageV, "V"))
		fmt.Fprintf(w, "  aicore freq\t%s\n", fmtFloat(m.AICoreFreqMHz, "MHz"))
		fmt.Fprintf(w, "  aicore cur freq\t%s\n", fmtFloat(m.AICoreCurFreqMHz, "MHz"))
		fmt.Fprintf(w, "  aicore busy\t%s\n", fmtFloat(m.AICoreBusyPct, "%"))
		fmt.Fprintf(w, "  mem busy\t%s\n", fmtFloat(m.MemBusyPct, "%"))
		fmt.Fprintf(w, "  mem total\t%s\n", fmtUint(m.MemTotalMB, "MB"))
		fmt.Fprintf(w, "  mem available\t%s\n", fmtUint(m.MemAvailableMB, "MB"))
		fmt.Fprintf(w, "  hbm total\t%s\n", fmtUint(m.HBMTotalMB, "MB"))
		fmt.Fprintf(w, "  hbm used\t%s\n", fmtUint(m.HBMUsedMB, "MB"))
		fmt.Fprintf(w, "  hbm temperature\t%s\n", fmtFloat(m.HBMTempC, "C"))
		fmt.Fprintf(w, "  hbm busy\t%s\n", fmtFloat(m.HBMBusyPct, "%"))
		fmt.Fprintf(w, "  ecc single bit\t%s\n", fmtUint(m.ECCSingleBitErrors, ""))
		fmt.Fprintf(w, "  ecc double bit\t%s\n", fmtUint(m.ECCDoubleBitErrors, ""))
	}
	return w.Flush()
}

func parseDeviceID(id string) (uint32, uint32, error) {
	if id == "" {
		return 0, 0, fmt.Errorf("device id is required (cardN-chipM)")
	}
	cardPart, chipPart, found := strings.Cut(id, "-")
	if !found || !strings.HasPrefix(cardPart, "card") || !strings.HasPrefix(chipPart, "chip") {
		return 0, 0, fmt.Errorf("invalid device id %q (expected cardN-chipM)", id)
	}
	cardID, err := strconv.ParseUint(cardPart[len("card"):], 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid device id %q (expected cardN-chipM)", id)
	}
	chipID, err := strconv.ParseUint(chipPart[len("chip"):], 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid device id %q (expected cardN-chipM)", id)
	}
	return uint32(cardID), uint32(chipID), nil
}

func parseVChipID(input string) (uint32, error) {
	if input == "" || input == "auto" {
		return dcmi.VChipAutoID, nil
	}
	parsed, err := strconv.ParseUint(input, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid vchip id %q", input)
	}
	return uint32(parsed), nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func fmtFloat(v *float64, unit string) string {
	if v == nil {
		return "n/a"
	}
	if unit == "" {
		return fmt.Sprintf("%v", *v)
	}
	return fmt.Sprintf("%v %s", *v, unit)
}

func fmtUint(v *uint64, unit string) string {
	if v == nil {
		return "n/a"
	}
	if unit == "" {
		return fmt.Sprintf("%d", *v)
	}
	return fmt.Sprintf("%d %s", *v, unit)
}
