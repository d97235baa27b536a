package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/Pridoh/Project-UKK-sub000/internal/repository"
	"github.com/google/uuid"
)

func stamp(created, updated *time.Time) {
	now := time.Now().UTC()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

type userRepo struct{ h handle }

func (r userRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	err := r.h.write(func(t *tables) error {
		for _, existing := range t.users {
			if existing.Username == u.Username {
				return fmt.Errorf("%w: username '%s' is taken", repository.ErrDuplicateEntry, u.Username)
			}
		}
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		stamp(&u.CreatedAt, &u.UpdatedAt)
		t.users[u.ID] = *u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r userRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var found *domain.User
	err := r.h.read(func(t *tables) error {
		for _, u := range t.users {
			if u.Username == username {
				found = &u
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return found, err
}

func (r userRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var found domain.User
	err := r.h.read(func(t *tables) error {
		u, ok := t.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		found = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

type areaRepo struct{ h handle }

func (r areaRepo) Create(ctx context.Context, a *domain.ParkingArea) (*domain.ParkingArea, error) {
	err := r.h.write(func(t *tables) error {
		for _, existing := range t.areas {
			if existing.Code == a.Code {
				return fmt.Errorf("%w: area code '%s' already exists", repository.ErrDuplicateEntry, a.Code)
			}
		}
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		stamp(&a.CreatedAt, &a.UpdatedAt)
		stored := *a
		stored.Capacities = nil
		t.areas[a.ID] = stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r areaRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.ParkingArea, error) {
	var found domain.ParkingArea
	err := r.h.read(func(t *tables) error {
		a, ok := t.areas[id]
		if !ok {
			return repository.ErrNotFound
		}
		found = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r areaRepo) FindAll(ctx context.Context) ([]domain.ParkingArea, error) {
	var areas []domain.ParkingArea
	_ = r.h.read(func(t *tables) error {
		for _, a := range t.areas {
			areas = append(areas, a)
		}
		return nil
	})
	slices.SortFunc(areas, func(a, b domain.ParkingArea) int { return cmp.Compare(a.Code, b.Code) })
	return areas, nil
}

func (r areaRepo) Update(ctx context.Context, a *domain.ParkingArea) (*domain.ParkingArea, error) {
	err := r.h.write(func(t *tables) error {
		existing, ok := t.areas[a.ID]
		if !ok {
			return repository.ErrNotFound
		}
		existing.Name = a.Name
		existing.Location = a.Location
		existing.UpdatedAt = time.Now().UTC()
		t.areas[a.ID] = existing
		a.UpdatedAt = existing.UpdatedAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r areaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.h.write(func(t *tables) error {
		if _, ok := t.areas[id]; !ok {
			return repository.ErrNotFound
		}
		delete(t.areas, id)
		for cid, c := range t.capacities {
			if c.AreaID == id {
				delete(t.capacities, cid)
			}
		}
		return nil
	})
}

func (r areaRepo) CountTransactions(ctx context.Context, id uuid.UUID) (int, error) {
	n := 0
	_ = r.h.read(func(t *tables) error {
		for _, trx := range t.transactions {
			if trx.AreaID == id {
				n++
			}
		}
		return nil
	})
	return n, nil
}

type capacityRepo struct{ h handle }

func (r capacityRepo) FindByAreaAndType(ctx context.Context, areaID, vehicleTypeID uuid.UUID) (*domain.Capacity, error) {
	var found *domain.Capacity
	err := r.h.read(func(t *tables) error {
		for _, c := range t.capacities {
			if c.AreaID == areaID && c.VehicleTypeID == vehicleTypeID {
				found = &c
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return found, err
}

func (r capacityRepo) FindByArea(ctx context.Context, areaID uuid.UUID) ([]domain.Capacity, error) {
	var caps []domain.Capacity
	_ = r.h.read(func(t *tables) error {
		for _, c := range t.capacities {
			if c.AreaID == areaID {
				caps = append(caps, c)
			}
		}
		slices.SortFunc(caps, func(a, b domain.Capacity) int {
			return cmp.Compare(t.vehicleTypes[a.VehicleTypeID].Code, t.vehicleTypes[b.VehicleTypeID].Code)
		})
		return nil
	})
	return caps, nil
}

func (r capacityRepo) Upsert(ctx context.Context, c *domain.Capacity) (*domain.Capacity, error) {
	err := r.h.write(func(t *tables) error {
		for id, existing := range t.capacities {
			if existing.AreaID == c.AreaID && existing.VehicleTypeID == c.VehicleTypeID {
				existing.TotalSlots = c.TotalSlots
				t.capacities[id] = existing
				c.ID = id
				return nil
			}
		}
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		t.capacities[c.ID] = *c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r capacityRepo) DeleteExcept(ctx context.Context, areaID uuid.UUID, keep []uuid.UUID) error {
	return r.h.write(func(t *tables) error {
		for id, c := range t.capacities {
			if c.AreaID == areaID && !slices.Contains(keep, c.VehicleTypeID) {
				delete(t.capacities, id)
			}
		}
		return nil
	})
}

func (r capacityRepo) Board(ctx context.Context) ([]domain.CapacityStatus, error) {
	var board []domain.CapacityStatus
	_ = r.h.read(func(t *tables) error {
		for _, c := range t.capacities {
			area, vt := t.areas[c.AreaID], t.vehicleTypes[c.VehicleTypeID]
			occupied := 0
			for _, trx := range t.transactions {
				if trx.Status == domain.StatusParked && trx.AreaID == c.AreaID && trx.VehicleTypeID == c.VehicleTypeID {
					occupied++
				}
			}
			board = append(board, domain.CapacityStatus{
				AreaID: area.ID, AreaCode: area.Code, AreaName: area.Name,
				VehicleTypeID: vt.ID, VehicleTypeCode: vt.Code, VehicleTypeName: vt.Name,
				TotalSlots: c.TotalSlots, Occupied: occupied, Available: max(c.TotalSlots-occupied, 0),
			})
		}
		return nil
	})
	slices.SortFunc(board, func(a, b domain.CapacityStatus) int {
		return cmp.Or(cmp.Compare(a.AreaCode, b.AreaCode), cmp.Compare(a.VehicleTypeCode, b.VehicleTypeCode))
	})
	return board, nil
}

type vehicleTypeRepo struct{ h handle }

func (r vehicleTypeRepo) Create(ctx context.Context, vt *domain.VehicleType) (*domain.VehicleType, error) {
	err := r.h.write(func(t *tables) error {
		for _, existing := range t.vehicleTypes {
			if existing.Code == vt.Code {
				return fmt.Errorf("%w: vehicle type code '%s' already exists", repository.ErrDuplicateEntry, vt.Code)
			}
		}
		if vt.ID == uuid.Nil {
			vt.ID = uuid.New()
		}
		stamp(&vt.CreatedAt, &vt.UpdatedAt)
		t.vehicleTypes[vt.ID] = *vt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vt, nil
}

func (r vehicleTypeRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.VehicleType, error) {
	var found domain.VehicleType
	err := r.h.read(func(t *tables) error {
		vt, ok := t.vehicleTypes[id]
		if !ok {
			return repository.ErrNotFound
		}
		found = vt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r vehicleTypeRepo) FindAll(ctx context.Context) ([]domain.VehicleType, error) {
	var types []domain.VehicleType
	_ = r.h.read(func(t *tables) error {
		for _, vt := range t.vehicleTypes {
			types = append(types, vt)
		}
		return nil
	})
	slices.SortFunc(types, func(a, b domain.VehicleType) int { return cmp.Compare(a.Code, b.Code) })
	return types, nil
}

func (r vehicleTypeRepo) Update(ctx context.Context, vt *domain.VehicleType) (*domain.VehicleType, error) {
	err := r.h.write(func(t *tables) error {
		existing, ok := t.vehicleTypes[vt.ID]
		if !ok {
			return repository.ErrNotFound
		}
		existing.Name = vt.Name
		existing.UpdatedAt = time.Now().UTC()
		t.vehicleTypes[vt.ID] = existing
		vt.UpdatedAt = existing.UpdatedAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vt, nil
}

func (r vehicleTypeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.h.write(func(t *tables) error {
		if _, ok := t.vehicleTypes[id]; !ok {
			return repository.ErrNotFound
		}
		delete(t.vehicleTypes, id)
		return nil
	})
}

func (r vehicleTypeRepo) CountUsage(ctx context.Context, id uuid.UUID) (int, error) {
	n := 0
	_ = r.h.read(func(t *tables) error {
		for _, trx := range t.transactions {
			if trx.VehicleTypeID == id {
				n++
			}
		}
		for _, v := range t.vehicles {
			if v.VehicleTypeID == id {
				n++
			}
		}
		for _, c := range t.capacities {
			if c.VehicleTypeID == id {
				n++
			}
		}
		for _, b := range t.tariffs {
			if b.VehicleTypeID == id {
				n++
			}
		}
		return nil
	})
	return n, nil
}

type vehicleRepo struct{ h handle }

func (r vehicleRepo) Create(ctx context.Context, v *domain.Vehicle) (*domain.Vehicle, error) {
	err := r.h.write(func(t *tables) error {
		for _, existing := range t.vehicles {
			if existing.PlateNumber == v.PlateNumber {
				return fmt.Errorf("%w: plate '%s' is already registered", repository.ErrDuplicateEntry, v.PlateNumber)
			}
		}
		if v.ID == uuid.Nil {
			v.ID = uuid.New()
		}
		stamp(&v.CreatedAt, &v.UpdatedAt)
		t.vehicles[v.ID] = *v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r vehicleRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Vehicle, error) {
	var found domain.Vehicle
	err := r.h.read(func(t *tables) error {
		v, ok := t.vehicles[id]
		if !ok {
			return repository.ErrNotFound
		}
		found = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r vehicleRepo) FindByPlate(ctx context.Context, plate string) (*domain.Vehicle, error) {
	var found *domain.Vehicle
	err := r.h.read(func(t *tables) error {
		for _, v := range t.vehicles {
			if v.PlateNumber == plate {
				found = &v
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return found, err
}

type tariffRepo struct{ h handle }

func sortBands(bands []domain.TariffBand) {
	slices.SortFunc(bands, func(a, b domain.TariffBand) int {
		return cmp.Or(cmp.Compare(a.DurationMin, b.DurationMin), cmp.Compare(a.ID.String(), b.ID.String()))
	})
}

func (r tariffRepo) Create(ctx context.Context, b *domain.TariffBand) (*domain.TariffBand, error) {
	_ = r.h.write(func(t *tables) error {
		if b.ID == uuid.Nil {
			b.ID = uuid.New()
		}
		stamp(&b.CreatedAt, &b.UpdatedAt)
		t.tariffs[b.ID] = *b
		return nil
	})
	return b, nil
}

func (r tariffRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.TariffBand, error) {
	var found domain.TariffBand
	err := r.h.read(func(t *tables) error {
		b, ok := t.tariffs[id]
		if !ok {
			return repository.ErrNotFound
		}
		found = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r tariffRepo) Update(ctx context.Context, b *domain.TariffBand) (*domain.TariffBand, error) {
	err := r.h.write(func(t *tables) error {
		existing, ok := t.tariffs[b.ID]
		if !ok {
			return repository.ErrNotFound
		}
		b.CreatedAt = existing.CreatedAt
		b.UpdatedAt = time.Now().UTC()
		t.tariffs[b.ID] = *b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r tariffRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.h.write(func(t *tables) error {
		if _, ok := t.tariffs[id]; !ok {
			return repository.ErrNotFound
		}
		delete(t.tariffs, id)
		return nil
	})
}

func (r tariffRepo) FindByVehicleType(ctx context.Context, vehicleTypeID uuid.UUID) ([]domain.TariffBand, error) {
	return r.filter(func(b domain.TariffBand) bool { return b.VehicleTypeID == vehicleTypeID }), nil
}

func (r tariffRepo) FindAll(ctx context.Context) ([]domain.TariffBand, error) {
	bands := r.filter(func(domain.TariffBand) bool { return true })
	slices.SortStableFunc(bands, func(a, b domain.TariffBand) int {
		return cmp.Compare(a.VehicleTypeID.String(), b.VehicleTypeID.String())
	})
	return bands, nil
}

func (r tariffRepo) FindActiveCovering(ctx context.Context, vehicleTypeID uuid.UUID, minutes int) ([]domain.TariffBand, error) {
	return r.filter(func(b domain.TariffBand) bool {
		return b.VehicleTypeID == vehicleTypeID && b.IsActive && b.Covers(minutes)
	}), nil
}

func (r tariffRepo) CountTransactions(ctx context.Context, id uuid.UUID) (int, error) {
	n := 0
	_ = r.h.read(func(t *tables) error {
		for _, trx := range t.transactions {
			if trx.TariffBandID.Valid && trx.TariffBandID.UUID == id {
				n++
			}
		}
		return nil
	})
	return n, nil
}

func (r tariffRepo) filter(keep func(domain.TariffBand) bool) []domain.TariffBand {
	var bands []domain.TariffBand
	_ = r.h.read(func(t *tables) error {
		for _, b := range t.tariffs {
			if keep(b) {
				bands = append(bands, b)
			}
		}
		return nil
	})
	sortBands(bands)
	return bands
}

type memberRepo struct{ h handle }

func (r memberRepo) Create(ctx context.Context, m *domain.Member) (*domain.Member, error) {
	_ = r.h.write(func(t *tables) error {
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		stamp(&m.CreatedAt, &m.UpdatedAt)
		t.members[m.ID] = *m
		return nil
	})
	return m, nil
}

func (r memberRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	var found domain.Member
	err := r.h.read(func(t *tables) error {
		m, ok := t.members[id]
		if !ok {
			return repository.ErrNotFound
		}
		found = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r memberRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.h.write(func(t *tables) error {
		if _, ok := t.members[id]; !ok {
			return repository.ErrNotFound
		}
		delete(t.members, id)
		return nil
	})
}

func (r memberRepo) FindByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]domain.Member, error) {
	return r.filter(func(m domain.Member) bool { return m.VehicleID == vehicleID }), nil
}

func (r memberRepo) FindActiveOn(ctx context.Context, vehicleID uuid.UUID, day time.Time) ([]domain.Member, error) {
	return r.filter(func(m domain.Member) bool { return m.VehicleID == vehicleID && m.ActiveOn(day) }), nil
}

func (r memberRepo) filter(keep func(domain.Member) bool) []domain.Member {
	var members []domain.Member
	_ = r.h.read(func(t *tables) error {
		for _, m := range t.members {
			if keep(m) {
				members = append(members, m)
			}
		}
		return nil
	})
	slices.SortFunc(members, func(a, b domain.Member) int { return a.StartDate.Compare(b.StartDate) })
	return members
}

type transactionRepo struct{ h handle }

func (r transactionRepo) Create(ctx context.Context, trx *domain.Transaction) (*domain.Transaction, error) {
	err := r.h.write(func(t *tables) error {
		for _, existing := range t.transactions {
			if existing.Code == trx.Code {
				return fmt.Errorf("%w: transaction code '%s'", repository.ErrDuplicateEntry, trx.Code)
			}
			if existing.VehicleID == trx.VehicleID && existing.Status == domain.StatusParked && trx.Status == domain.StatusParked {
				return fmt.Errorf("%w: vehicle %s", domain.ErrDuplicateActiveSession, trx.VehicleID)
			}
		}
		if trx.ID == uuid.Nil {
			trx.ID = uuid.New()
		}
		stamp(&trx.CreatedAt, &trx.UpdatedAt)
		t.transactions[trx.ID] = stripRelations(*trx)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return trx, nil
}

func stripRelations(trx domain.Transaction) domain.Transaction {
	trx.Vehicle, trx.Area, trx.VehicleType, trx.TariffBand, trx.Operator = nil, nil, nil, nil, nil
	return trx
}

func (r transactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	var found domain.Transaction
	err := r.h.read(func(t *tables) error {
		trx, ok := t.transactions[id]
		if !ok {
			return repository.ErrNotFound
		}
		found = trx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

// FindByIDForUpdate needs no row lock: units of work are already serialized.
func (r transactionRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	return r.FindByID(ctx, id)
}

func (r transactionRepo) FindActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) (*domain.Transaction, error) {
	var found *domain.Transaction
	err := r.h.read(func(t *tables) error {
		for _, trx := range t.transactions {
			if trx.VehicleID == vehicleID && trx.Status == domain.StatusParked {
				if found == nil || trx.EntryTime.After(found.EntryTime) {
					found = &trx
				}
			}
		}
		if found == nil {
			return repository.ErrNotFound
		}
		return nil
	})
	return found, err
}

func (r transactionRepo) Update(ctx context.Context, trx *domain.Transaction) (*domain.Transaction, error) {
	err := r.h.write(func(t *tables) error {
		existing, ok := t.transactions[trx.ID]
		if !ok {
			return repository.ErrNotFound
		}
		trx.CreatedAt = existing.CreatedAt
		trx.UpdatedAt = time.Now().UTC()
		t.transactions[trx.ID] = stripRelations(*trx)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return trx, nil
}

func (r transactionRepo) CountParked(ctx context.Context, areaID, vehicleTypeID uuid.UUID) (int, error) {
	n := 0
	_ = r.h.read(func(t *tables) error {
		for _, trx := range t.transactions {
			if trx.Status == domain.StatusParked && trx.AreaID == areaID && trx.VehicleTypeID == vehicleTypeID {
				n++
			}
		}
		return nil
	})
	return n, nil
}

// LockCodeSequence is a no-op: the unit-of-work lock already covers it.
func (r transactionRepo) LockCodeSequence(ctx context.Context, prefix string) error {
	return nil
}

func (r transactionRepo) FindLatestCodeWithPrefix(ctx context.Context, prefix string) (string, error) {
	latest := ""
	_ = r.h.read(func(t *tables) error {
		for _, trx := range t.transactions {
			if !strings.HasPrefix(trx.Code, prefix) {
				continue
			}
			if len(trx.Code) > len(latest) || (len(trx.Code) == len(latest) && trx.Code > latest) {
				latest = trx.Code
			}
		}
		return nil
	})
	return latest, nil
}

func (r transactionRepo) SearchParked(ctx context.Context, code, plate string, limit int) ([]domain.Transaction, error) {
	type match struct {
		trx   domain.Transaction
		exact bool
	}
	var matches []match
	_ = r.h.read(func(t *tables) error {
		for _, trx := range t.transactions {
			if trx.Status != domain.StatusParked {
				continue
			}
			vehiclePlate := t.vehicles[trx.VehicleID].PlateNumber
			upperCode := strings.ToUpper(trx.Code)
			codeHit := code != "" && strings.Contains(upperCode, strings.ToUpper(code))
			plateHit := plate != "" && strings.Contains(vehiclePlate, plate)
			if codeHit || plateHit {
				exact := upperCode == strings.ToUpper(code) || vehiclePlate == plate
				matches = append(matches, match{trx: trx, exact: exact})
			}
		}
		return nil
	})
	slices.SortFunc(matches, func(a, b match) int {
		if a.exact != b.exact {
			if a.exact {
				return -1
			}
			return 1
		}
		return b.trx.EntryTime.Compare(a.trx.EntryTime)
	})
	var out []domain.Transaction
	for i, m := range matches {
		if limit > 0 && i >= limit {
			break
		}
		out = append(out, m.trx)
	}
	return out, nil
}
