package services

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/AnnaShafeeva/hotel-diplom/internal/models"
	"github.com/AnnaShafeeva/hotel-diplom/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type memRoomRepo struct {
	rooms       []models.HotelRoom
	filters     []repository.RoomListFilter
	createErr   error
	lastCreate  repository.RoomInput
	lastUpdate  repository.RoomInput
	updateCalls int
}

func (r *memRoomRepo) Create(_ context.Context, input repository.RoomInput) (*models.HotelRoom, error) {
	r.lastCreate = input
	if r.createErr != nil {
		return nil, r.createErr
	}
	room := models.HotelRoom{ID: int64(len(r.rooms) + 1), HotelID: input.HotelID, Description: input.Description, IsEnabled: input.IsEnabled}
	r.rooms = append(r.rooms, room)
	return &room, nil
}

func (r *memRoomRepo) GetByID(_ context.Context, roomID int64) (*models.HotelRoom, error) {
	for i := range r.rooms {
		if r.rooms[i].ID == roomID {
			room := r.rooms[i]
			return &room, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memRoomRepo) GetDetail(ctx context.Context, roomID int64) (*models.HotelRoomDetail, error) {
	room, err := r.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return &models.HotelRoomDetail{HotelRoom: *room, Hotel: models.Hotel{ID: room.HotelID}}, nil
}

func (r *memRoomRepo) Update(_ context.Context, roomID int64, input repository.RoomInput) (*models.HotelRoom, error) {
	r.updateCalls++
	r.lastUpdate = input
	return &models.HotelRoom{ID: roomID, HotelID: input.HotelID, Description: input.Description, IsEnabled: input.IsEnabled}, nil
}

func (r *memRoomRepo) List(_ context.Context, filter repository.RoomListFilter) ([]models.HotelRoom, error) {
	r.filters = append(r.filters, filter)

	matched := make([]models.HotelRoom, 0)
	for _, room := range r.rooms {
		if room.ID <= filter.AfterID {
			continue
		}
		if filter.HotelID != nil && room.HotelID != *filter.HotelID {
			continue
		}
		if filter.IsEnabled != nil && room.IsEnabled != *filter.IsEnabled {
			continue
		}
		matched = append(matched, room)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	if filter.Offset > len(matched) {
		return []models.HotelRoom{}, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

type memHotelRepo struct {
	hotels map[int64]models.Hotel
}

func (r *memHotelRepo) Create(_ context.Context, title, description string) (*models.Hotel, error) {
	hotel := models.Hotel{ID: int64(len(r.hotels) + 1), Title: title, Description: description}
	r.hotels[hotel.ID] = hotel
	return &hotel, nil
}

func (r *memHotelRepo) Update(_ context.Context, hotelID int64, title, description string) (*models.Hotel, error) {
	hotel, ok := r.hotels[hotelID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	hotel.Title = title
	hotel.Description = description
	r.hotels[hotelID] = hotel
	return &hotel, nil
}

func (r *memHotelRepo) GetByID(_ context.Context, hotelID int64) (*models.Hotel, error) {
	hotel, ok := r.hotels[hotelID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &hotel, nil
}

// bookedRooms reports an overlap for every room id it holds.
type bookedRooms map[int64]bool

func (b bookedRooms) HasOverlap(_ context.Context, roomID int64, _, _ time.Time) (bool, error) {
	return b[roomID], nil
}

func seedRooms(count int, disabled ...int64) *memRoomRepo {
	off := make(map[int64]bool, len(disabled))
	for _, id := range disabled {
		off[id] = true
	}
	repo := &memRoomRepo{}
	for i := 1; i <= count; i++ {
		id := int64(i)
		repo.rooms = append(repo.rooms, models.HotelRoom{ID: id, HotelID: 1, IsEnabled: !off[id]})
	}
	return repo
}

func newTestRoomService(rooms *memRoomRepo, booked bookedRooms) *RoomService {
	hotels := &memHotelRepo{hotels: map[int64]models.Hotel{1: {ID: 1, Title: "Seaside"}}}
	return NewRoomService(rooms, hotels, booked, quietLogger())
}

func roomIDs(rooms []models.HotelRoom) []int64 {
	ids := make([]int64, 0, len(rooms))
	for _, room := range rooms {
		ids = append(ids, room.ID)
	}
	return ids
}

func TestSearchForcesEnabledForNonEmployees(t *testing.T) {
	rooms := seedRooms(4, 2)
	service := newTestRoomService(rooms, bookedRooms{})
	disabled := false

	for _, role := range []string{"", models.RoleClient} {
		result, err := service.Search(context.Background(), RoomSearchParams{IsEnabled: &disabled}, role)
		if err != nil {
			t.Fatalf("Search(%q): %v", role, err)
		}
		if got := roomIDs(result); len(got) != 3 || got[1] != 3 {
			t.Fatalf("Search(%q) returned %v, want enabled rooms only", role, got)
		}
	}

	result, err := service.Search(context.Background(), RoomSearchParams{IsEnabled: &disabled}, models.RoleManager)
	if err != nil {
		t.Fatalf("Search(manager): %v", err)
	}
	if got := roomIDs(result); len(got) != 1 || got[0] != 2 {
		t.Fatalf("manager search returned %v, want [2]", got)
	}
}

func TestSearchWithoutDatesPagesInRepository(t *testing.T) {
	rooms := seedRooms(5)
	service := newTestRoomService(rooms, bookedRooms{})

	result, err := service.Search(context.Background(), RoomSearchParams{Limit: 2, Offset: 1}, models.RoleAdmin)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got := roomIDs(result); len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Fatalf("unexpected page %v", got)
	}
	if len(rooms.filters) != 1 || rooms.filters[0].Limit != 2 || rooms.filters[0].Offset != 1 {
		t.Fatalf("expected limit and offset pushed down, got %+v", rooms.filters)
	}
}

func TestSearchWithDatesPagesOverAvailableRooms(t *testing.T) {
	rooms := seedRooms(searchBatchSize + 10)
	booked := bookedRooms{}
	for id := int64(1); id <= searchBatchSize; id += 2 {
		booked[id] = true
	}
	service := newTestRoomService(rooms, booked)

	start, end := date(2030, 7, 1), date(2030, 7, 3)
	result, err := service.Search(context.Background(), RoomSearchParams{
		StartDate: &start,
		EndDate:   &end,
		Offset:    20,
		Limit:     10,
	}, models.RoleClient)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	got := roomIDs(result)
	if len(got) != 10 {
		t.Fatalf("expected a full page of 10, got %v", got)
	}
	for _, id := range got {
		if booked[id] {
			t.Fatalf("booked room %d returned", id)
		}
	}
	// 25 even rooms are free in the first batch; skipping 20 leaves 42..50, then 51..55.
	if got[0] != 42 || got[4] != 50 || got[5] != 51 || got[9] != 55 {
		t.Fatalf("unexpected page %v", got)
	}
	if len(rooms.filters) != 2 || rooms.filters[1].AfterID != searchBatchSize {
		t.Fatalf("expected a second batch after id %d, got %+v", searchBatchSize, rooms.filters)
	}
}

func TestSearchRejectsBadParams(t *testing.T) {
	service := newTestRoomService(seedRooms(1), bookedRooms{})
	start, end := date(2030, 7, 3), date(2030, 7, 1)

	if _, err := service.Search(context.Background(), RoomSearchParams{Limit: -1}, ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative limit, got %v", err)
	}
	if _, err := service.Search(context.Background(), RoomSearchParams{StartDate: &start, EndDate: &end}, ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for inverted dates, got %v", err)
	}
}

func TestGetRoomHidesDisabledFromClients(t *testing.T) {
	service := newTestRoomService(seedRooms(2, 2), bookedRooms{})

	if _, err := service.GetRoom(context.Background(), 2, models.RoleClient); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound for client, got %v", err)
	}
	room, err := service.GetRoom(context.Background(), 2, models.RoleAdmin)
	if err != nil {
		t.Fatalf("GetRoom(admin): %v", err)
	}
	if room.IsEnabled {
		t.Fatal("expected the disabled room")
	}
}

func TestCreateRoomRequiresExistingHotel(t *testing.T) {
	rooms := seedRooms(0)
	service := newTestRoomService(rooms, bookedRooms{})

	if _, err := service.CreateRoom(context.Background(), CreateRoomInput{HotelID: 42}); !errors.Is(err, ErrHotelNotFound) {
		t.Fatalf("expected ErrHotelNotFound, got %v", err)
	}

	rooms.createErr = &pgconn.PgError{Code: pgCodeForeignKeyViolation}
	if _, err := service.CreateRoom(context.Background(), CreateRoomInput{HotelID: 1}); !errors.Is(err, ErrHotelNotFound) {
		t.Fatalf("expected FK violation mapped to ErrHotelNotFound, got %v", err)
	}

	rooms.createErr = nil
	room, err := service.CreateRoom(context.Background(), CreateRoomInput{HotelID: 1, Description: "  Sea view  ", IsEnabled: true})
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if room.Description != "Sea view" {
		t.Fatalf("expected trimmed description, got %q", room.Description)
	}
}

func TestUpdateRoomKeepsHotelUnlessMoved(t *testing.T) {
	rooms := seedRooms(1)
	service := newTestRoomService(rooms, bookedRooms{})

	if _, err := service.UpdateRoom(context.Background(), 1, UpdateRoomInput{Description: "Renovated"}); err != nil {
		t.Fatalf("UpdateRoom: %v", err)
	}
	if rooms.lastUpdate.HotelID != 1 || rooms.lastUpdate.IsEnabled {
		t.Fatalf("unexpected update input %+v", rooms.lastUpdate)
	}

	missing := int64(9)
	if _, err := service.UpdateRoom(context.Background(), 1, UpdateRoomInput{HotelID: &missing}); !errors.Is(err, ErrHotelNotFound) {
		t.Fatalf("expected ErrHotelNotFound, got %v", err)
	}
	if _, err := service.UpdateRoom(context.Background(), 404, UpdateRoomInput{}); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
	if rooms.updateCalls != 1 {
		t.Fatalf("expected a single repository update, got %d", rooms.updateCalls)
	}
}

func TestCreateHotelRequiresTitle(t *testing.T) {
	service := newTestRoomService(seedRooms(0), bookedRooms{})

	if _, err := service.CreateHotel(context.Background(), "   ", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	hotel, err := service.CreateHotel(context.Background(), " Mountain Lodge ", "")
	if err != nil {
		t.Fatalf("CreateHotel: %v", err)
	}
	if hotel.Title != "Mountain Lodge" {
		t.Fatalf("expected trimmed title, got %q", hotel.Title)
	}
}

func TestUpdateHotel(t *testing.T) {
	service := newTestRoomService(seedRooms(0), bookedRooms{})
	ctx := context.Background()

	hotel, err := service.UpdateHotel(ctx, 1, "  Seaside Resort ", " Renovated ")
	if err != nil {
		t.Fatalf("UpdateHotel: %v", err)
	}
	if hotel.Title != "Seaside Resort" || hotel.Description != "Renovated" {
		t.Fatalf("expected trimmed values, got %+v", hotel)
	}

	got, err := service.GetHotel(ctx, 1)
	if err != nil || got.Title != "Seaside Resort" {
		t.Fatalf("expected stored title, got %+v, %v", got, err)
	}

	if _, err := service.UpdateHotel(ctx, 1, "   ", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank title, got %v", err)
	}
	if _, err := service.UpdateHotel(ctx, 404, "Nowhere", ""); !errors.Is(err, ErrHotelNotFound) {
		t.Fatalf("expected ErrHotelNotFound, got %v", err)
	}
}
