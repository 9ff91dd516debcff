package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ovaphlow/pitchfork/service-edge-admin/internal/device"
	"github.com/ovaphlow/pitchfork/service-edge-admin/internal/result"
	"github.com/ovaphlow/pitchfork/service-edge-admin/pkg/utilities"
)

var menuItems = []string{
	"1. List all devices",
	"2. Show device by id",
	"3. Create device",
	"4. Update device by public id",
	"5. Delete device",
	"6. Show total devices",
	"7. Show total users",
	"8. Show last used device by user id",
	"9. Show user account dates",
	"10. Mark user inactive if stale",
	"0. Exit",
}

// Menu reads numbered choices from in and prints results to out.
type Menu struct {
	backend Backend
	in      *bufio.Scanner
	out     io.Writer

	lines   chan string
	scanErr error
}

func NewMenu(backend Backend, in io.Reader, out io.Writer) *Menu {
	return &Menu{backend: backend, in: bufio.NewScanner(in), out: out}
}

// Run loops until the user picks 0, input ends or ctx is done. Input is read
// on its own goroutine so a cancelled ctx ends Run while a read is pending.
func (m *Menu) Run(ctx context.Context) error {
	m.lines = make(chan string)
	go m.scan(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.printMenu()
		choice, ok := m.readLine(ctx)
		if !ok {
			if err := ctx.Err(); err != nil {
				return err
			}
			return m.scanErr
		}

		var err error
		switch choice {
		case "0":
			return nil
		case "1":
			err = m.listDevices(ctx)
		case "2":
			err = m.showDevice(ctx)
		case "3":
			err = m.createDevice(ctx)
		case "4":
			err = m.updateDevice(ctx)
		case "5":
			err = m.deleteDevice(ctx)
		case "6":
			err = m.totalDevices(ctx)
		case "7":
			err = m.totalUsers(ctx)
		case "8":
			err = m.lastUsedDevice(ctx)
		case "9":
			err = m.userDates(ctx)
		case "10":
			err = m.markInactive(ctx)
		default:
			m.println("Unknown option. Choose 0 to 10.")
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			m.println(errorStyle.Render("Request failed: " + err.Error()))
		}
	}
}

func (m *Menu) printMenu() {
	fmt.Fprintln(m.out)
	m.println(titleStyle.Render("Edge Admin"))
	m.println(menuStyle.Render(strings.Join(menuItems, "\n")))
	fmt.Fprint(m.out, promptStyle.Render("> "))
}

func (m *Menu) println(s string) { fmt.Fprintln(m.out, s) }

// scan feeds input lines to m.lines and closes it at end of input.
func (m *Menu) scan(ctx context.Context) {
	defer close(m.lines)
	for m.in.Scan() {
		select {
		case m.lines <- m.in.Text():
		case <-ctx.Done():
			return
		}
	}
	m.scanErr = m.in.Err()
}

func (m *Menu) readLine(ctx context.Context) (string, bool) {
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-m.lines:
		if !ok {
			return "", false
		}
		return strings.TrimSpace(line), true
	}
}

func (m *Menu) prompt(ctx context.Context, label string) string {
	fmt.Fprint(m.out, promptStyle.Render(label+": "))
	s, _ := m.readLine(ctx)
	return s
}

// promptID reads an integer; it prints a hint and reports false otherwise.
func (m *Menu) promptID(ctx context.Context, label string) (int64, bool) {
	raw := m.prompt(ctx, label)
	if ctx.Err() != nil {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		m.println(fmt.Sprintf("Please enter a valid integer %s.", strings.ToLower(label)))
		return 0, false
	}
	return id, true
}

// show prints the failure, or calls onSuccess with the value.
func show[T any](m *Menu, res result.Result[T], onSuccess func(T)) {
	if v, ok := res.Value(); ok {
		onSuccess(v)
		return
	}
	if e := res.Err(); e != nil {
		m.println(errorStyle.Render(fmt.Sprintf("Error [%s]: %s", e.Code, e.Message)))
		return
	}
	m.println(errorStyle.Render("Request failed with an unknown error."))
}

func (m *Menu) listDevices(ctx context.Context) error {
	res, err := m.backend.ListDevices(ctx)
	if err != nil {
		return err
	}
	show(m, res, func(devices []device.DeviceSummary) {
		m.println(okStyle.Render(fmt.Sprintf("Found %d device rows:", len(devices))))
		for _, d := range devices {
			m.println(formatDevice(d))
		}
	})
	return nil
}

func (m *Menu) showDevice(ctx context.Context) error {
	id, ok := m.promptID(ctx, "Device id")
	if !ok {
		return nil
	}
	res, err := m.backend.GetDeviceByID(ctx, id)
	if err != nil {
		return err
	}
	show(m, res, func(d device.DeviceSummary) { m.println(formatDevice(d)) })
	return nil
}

func (m *Menu) createDevice(ctx context.Context) error {
	publicID := m.prompt(ctx, "Public device id (blank to generate)")
	if publicID == "" {
		publicID = utilities.NewDeviceGUID()
	}
	name := m.prompt(ctx, "Name")
	typeID, ok := m.promptID(ctx, "Device type id")
	if !ok {
		return nil
	}
	ownerID, ok := m.promptID(ctx, "Owner user id")
	if !ok {
		return nil
	}
	res, err := m.backend.CreateDevice(ctx, device.CreateDeviceRequest{
		PublicDeviceID: publicID,
		Name:           name,
		DeviceTypeID:   typeID,
		OwnerUserID:    ownerID,
	})
	if err != nil {
		return err
	}
	show(m, res, func(id int64) {
		m.println(okStyle.Render(fmt.Sprintf("Created device %d (%s)", id, publicID)))
	})
	return nil
}

func (m *Menu) updateDevice(ctx context.Context) error {
	req := device.UpdateDeviceRequest{
		TargetPublicDeviceID: m.prompt(ctx, "Current public device id"),
		PublicDeviceID:       m.prompt(ctx, "New public device id"),
		Name:                 m.prompt(ctx, "New name"),
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	res, err := m.backend.UpdateDevice(ctx, req)
	if err != nil {
		return err
	}
	show(m, res, func(bool) { m.println(okStyle.Render("Device updated.")) })
	return nil
}

func (m *Menu) deleteDevice(ctx context.Context) error {
	id, ok := m.promptID(ctx, "Device id")
	if !ok {
		return nil
	}
	res, err := m.backend.DeleteDevice(ctx, id)
	if err != nil {
		return err
	}
	show(m, res, func(bool) { m.println(okStyle.Render(fmt.Sprintf("Device %d deleted.", id))) })
	return nil
}

func (m *Menu) totalDevices(ctx context.Context) error {
	res, err := m.backend.TotalDevices(ctx)
	if err != nil {
		return err
	}
	show(m, res, func(n int) { m.println(fmt.Sprintf("Total devices: %d", n)) })
	return nil
}

func (m *Menu) totalUsers(ctx context.Context) error {
	res, err := m.backend.TotalUsers(ctx)
	if err != nil {
		return err
	}
	show(m, res, func(n int) { m.println(fmt.Sprintf("Total users: %d", n)) })
	return nil
}

func (m *Menu) lastUsedDevice(ctx context.Context) error {
	id, ok := m.promptID(ctx, "User id")
	if !ok {
		return nil
	}
	res, err := m.backend.LastUsedDeviceForUser(ctx, id)
	if err != nil {
		return err
	}
	show(m, res, func(d device.LastUsedDevice) {
		m.println(fmt.Sprintf("User %d last used device %d (%s) at %s",
			d.UserID, d.DeviceID, d.DeviceName, d.LastUsedAtUTC.Format(time.RFC3339)))
	})
	return nil
}

func (m *Menu) userDates(ctx context.Context) error {
	id, ok := m.promptID(ctx, "User id")
	if !ok {
		return nil
	}
	res, err := m.backend.UserAccountDates(ctx, id)
	if err != nil {
		return err
	}
	show(m, res, func(d device.UserAccountDates) { m.println(formatDates(d)) })
	return nil
}

func (m *Menu) markInactive(ctx context.Context) error {
	id, ok := m.promptID(ctx, "User id")
	if !ok {
		return nil
	}
	res, err := m.backend.MarkUserInactiveIfStale(ctx, id)
	if err != nil {
		return err
	}
	show(m, res, func(d device.UserAccountDates) { m.println(formatDates(d)) })
	return nil
}

func formatDevice(d device.DeviceSummary) string {
	return fmt.Sprintf("%d | %s | %s | %s", d.ID, d.Name, d.PublicDeviceID, d.CreatedAtUTC.Format(time.RFC3339))
}

func formatDates(d device.UserAccountDates) string {
	return fmt.Sprintf("User %d | status %s | created %s | updated %s",
		d.UserID, d.Status, d.CreatedAtUTC.Format(time.RFC3339), d.UpdatedAtUTC.Format(time.RFC3339))
}
