// Command meetingctl inspects and edits the reservation store directly.
//
//	meetingctl rooms
//	meetingctl add-room -name Orion -capacity 6 [-location 3F] [-features projector,whiteboard]
//	meetingctl users
//	meetingctl add-user -email alice@example.com [-name Alice]
//	meetingctl meetings [-room ID] [-organizer ID] [-from T -until T] [-all]
//	meetingctl book -title Standup -organizer ID -room ID -start T -end T
//	meetingctl cancel ID
//	meetingctl available -start T -end T [-min-capacity N]
//
// Times are RFC 3339. The store is selected with the same MEETINGS_*
// variables meetingd reads.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/example/meeting-reservations/internal/application"
	"github.com/example/meeting-reservations/internal/bootstrap"
	"github.com/example/meeting-reservations/internal/config"
	"github.com/example/meeting-reservations/internal/logging"
)

var errUsage = errors.New("usage: meetingctl <rooms|add-room|users|add-user|meetings|book|cancel|available> [flags]")

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "meetingctl:", err)
		os.Exit(1)
	}
	logger, err := logging.New("warn", "text", os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "meetingctl:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "meetingctl:", err)
		os.Exit(1)
	}

	err = run(ctx, bootstrap.NewServices(store, logger), os.Args[1:], os.Stdout)
	if cerr := store.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "meetingctl:", err)
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, svc bootstrap.Services, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "rooms":
		return listRooms(ctx, svc, out)
	case "add-room":
		return addRoom(ctx, svc, rest, out)
	case "users":
		return listUsers(ctx, svc, out)
	case "add-user":
		return addUser(ctx, svc, rest, out)
	case "meetings":
		return listMeetings(ctx, svc, rest, out)
	case "book":
		return book(ctx, svc, rest, out)
	case "cancel":
		return cancel(ctx, svc, rest, out)
	case "available":
		return available(ctx, svc, rest, out)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func newTable(out io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func renderRooms(out io.Writer, rooms []application.Room) {
	table := newTable(out, "ID", "Name", "Location", "Capacity", "Status", "Features")
	for _, room := range rooms {
		table.Append([]string{
			room.ID,
			room.Name,
			room.Location,
			strconv.Itoa(room.Capacity),
			string(room.Status),
			strings.Join(room.Features, ","),
		})
	}
	table.Render()
}

func renderMeetings(out io.Writer, meetings []application.Meeting) {
	table := newTable(out, "ID", "Title", "Room", "Organizer", "Start", "End", "Status", "Attendees")
	for _, m := range meetings {
		table.Append([]string{
			m.ID,
			m.Title,
			m.RoomID,
			m.OrganizerID,
			m.Start.UTC().Format(time.RFC3339),
			m.End.UTC().Format(time.RFC3339),
			string(m.Status),
			strconv.Itoa(len(m.Attendees)),
		})
	}
	table.Render()
}

func listRooms(ctx context.Context, svc bootstrap.Services, out io.Writer) error {
	rooms, err := svc.Rooms.ListRooms(ctx)
	if err != nil {
		return err
	}
	renderRooms(out, rooms)
	return nil
}

func addRoom(ctx context.Context, svc bootstrap.Services, args []string, out io.Writer) error {
	fs := newFlagSet("add-room")
	name := fs.String("name", "", "room name")
	location := fs.String("location", "", "building or floor")
	capacity := fs.Int("capacity", 0, "seats")
	features := fs.String("features", "", "comma separated features")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var list []string
	if *features != "" {
		list = strings.Split(*features, ",")
	}
	room, err := svc.Rooms.CreateRoom(ctx, application.CreateRoomParams{
		Name:     *name,
		Location: *location,
		Capacity: *capacity,
		Features: list,
	})
	if err != nil {
		return err
	}
	renderRooms(out, []application.Room{room})
	return nil
}

func listUsers(ctx context.Context, svc bootstrap.Services, out io.Writer) error {
	users, err := svc.Users.ListUsers(ctx)
	if err != nil {
		return err
	}
	table := newTable(out, "ID", "Email", "Name")
	for _, u := range users {
		table.Append([]string{u.ID, u.Email, u.DisplayName})
	}
	table.Render()
	return nil
}

func addUser(ctx context.Context, svc bootstrap.Services, args []string, out io.Writer) error {
	fs := newFlagSet("add-user")
	email := fs.String("email", "", "email address")
	name := fs.String("name", "", "display name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := svc.Users.RegisterUser(ctx, application.RegisterUserParams{Email: *email, DisplayName: *name})
	if err != nil {
		return err
	}
	fmt.Fprintln(out, user.ID)
	return nil
}

func listMeetings(ctx context.Context, svc bootstrap.Services, args []string, out io.Writer) error {
	fs := newFlagSet("meetings")
	room := fs.String("room", "", "room id")
	organizer := fs.String("organizer", "", "organizer id")
	from := fs.String("from", "", "window start")
	until := fs.String("until", "", "window end")
	all := fs.Bool("all", false, "include cancelled meetings")
	if err := fs.Parse(args); err != nil {
		return err
	}

	params := application.ListMeetingsParams{
		RoomID:           *room,
		OrganizerID:      *organizer,
		IncludeCancelled: *all,
	}
	var err error
	if params.From, err = optionalTime("from", *from); err != nil {
		return err
	}
	if params.Until, err = optionalTime("until", *until); err != nil {
		return err
	}

	meetings, err := svc.Reservations.ListMeetings(ctx, params)
	if err != nil {
		return err
	}
	renderMeetings(out, meetings)
	return nil
}

func book(ctx context.Context, svc bootstrap.Services, args []string, out io.Writer) error {
	fs := newFlagSet("book")
	title := fs.String("title", "", "meeting title")
	organizer := fs.String("organizer", "", "organizer id")
	room := fs.String("room", "", "room id")
	start := fs.String("start", "", "start time")
	end := fs.String("end", "", "end time")
	if err := fs.Parse(args); err != nil {
		return err
	}

	startAt, err := requiredTime("start", *start)
	if err != nil {
		return err
	}
	endAt, err := requiredTime("end", *end)
	if err != nil {
		return err
	}

	meeting, err := svc.Reservations.CreateMeeting(ctx, application.CreateMeetingParams{
		Title:       *title,
		Start:       startAt,
		End:         endAt,
		OrganizerID: *organizer,
		RoomID:      *room,
	})
	if err != nil {
		return err
	}
	renderMeetings(out, []application.Meeting{meeting})
	return nil
}

func cancel(ctx context.Context, svc bootstrap.Services, args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: cancel takes one meeting id", errUsage)
	}
	meeting, err := svc.Reservations.CancelMeeting(ctx, args[0])
	if errors.Is(err, application.ErrAlreadyTerminal) {
		fmt.Fprintf(out, "meeting %s is already %s\n", meeting.ID, meeting.Status)
		return nil
	}
	if err != nil {
		return err
	}
	renderMeetings(out, []application.Meeting{meeting})
	return nil
}

func available(ctx context.Context, svc bootstrap.Services, args []string, out io.Writer) error {
	fs := newFlagSet("available")
	start := fs.String("start", "", "window start")
	end := fs.String("end", "", "window end")
	minCapacity := fs.Int("min-capacity", 0, "minimum seats")
	if err := fs.Parse(args); err != nil {
		return err
	}

	startAt, err := requiredTime("start", *start)
	if err != nil {
		return err
	}
	endAt, err := requiredTime("end", *end)
	if err != nil {
		return err
	}

	params := application.FindAvailableRoomsParams{Start: startAt, End: endAt}
	if *minCapacity > 0 {
		params.MinCapacity = minCapacity
	}
	rooms, err := svc.Availability.FindAvailableRooms(ctx, params)
	if err != nil {
		return err
	}
	renderRooms(out, rooms)
	return nil
}

func requiredTime(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: -%s is required", errUsage, name)
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("-%s: %w", name, err)
	}
	return t, nil
}

func optionalTime(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := requiredTime(name, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
