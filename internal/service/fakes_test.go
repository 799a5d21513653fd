package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/maheshrc27/coolify-admin/internal/coolify"
	"github.com/maheshrc27/coolify-admin/internal/models"
)

type fakeUsers struct {
	byEmail  map[string]*models.User
	googleID map[int64]string
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*models.User, bool, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, true, nil
		}
	}
	return nil, false, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, bool, error) {
	u, ok := f.byEmail[email]
	return u, ok, nil
}

func (f *fakeUsers) Create(_ context.Context, user *models.User) (int64, error) {
	if f.byEmail == nil {
		f.byEmail = map[string]*models.User{}
	}
	user.ID = int64(len(f.byEmail) + 1)
	f.byEmail[user.Email] = user
	return user.ID, nil
}

func (f *fakeUsers) SetGoogleID(_ context.Context, id int64, googleID string) error {
	if f.googleID == nil {
		f.googleID = map[int64]string{}
	}
	f.googleID[id] = googleID
	return nil
}

type fakeClients struct {
	rows map[int64]*models.Client
}

func (f *fakeClients) List(context.Context) ([]*models.Client, error) {
	list := []*models.Client{}
	for _, c := range f.rows {
		list = append(list, c)
	}
	return list, nil
}

func (f *fakeClients) GetByID(_ context.Context, id int64) (*models.Client, bool, error) {
	c, ok := f.rows[id]
	return c, ok, nil
}

func (f *fakeClients) Create(_ context.Context, c *models.Client) (*models.Client, error) {
	c.ID = int64(len(f.rows) + 1)
	f.rows[c.ID] = c
	return c, nil
}

func (f *fakeClients) Update(_ context.Context, c *models.Client) (*models.Client, bool, error) {
	if _, ok := f.rows[c.ID]; !ok {
		return nil, false, nil
	}
	f.rows[c.ID] = c
	return c, true, nil
}

func (f *fakeClients) Remove(_ context.Context, id int64) (bool, error) {
	_, ok := f.rows[id]
	delete(f.rows, id)
	return ok, nil
}

type fakeProjects struct {
	rows      map[int64]*models.Project
	upsertErr map[string]error
}

func (f *fakeProjects) List(context.Context) ([]*models.Project, error) {
	list := []*models.Project{}
	for _, p := range f.rows {
		list = append(list, p)
	}
	return list, nil
}

func (f *fakeProjects) GetByID(_ context.Context, id int64) (*models.Project, bool, error) {
	p, ok := f.rows[id]
	return p, ok, nil
}

func (f *fakeProjects) GetByUUID(_ context.Context, uuid string) (*models.Project, bool, error) {
	for _, p := range f.rows {
		if p.CoolifyUUID == uuid {
			return p, true, nil
		}
	}
	return nil, false, nil
}

func (f *fakeProjects) Create(_ context.Context, p *models.Project) (*models.Project, error) {
	p.ID = int64(len(f.rows) + 1)
	f.rows[p.ID] = p
	return p, nil
}

func (f *fakeProjects) Upsert(ctx context.Context, p *models.Project) (bool, error) {
	if err := f.upsertErr[p.CoolifyUUID]; err != nil {
		return false, err
	}
	if existing, ok, _ := f.GetByUUID(ctx, p.CoolifyUUID); ok {
		existing.Name = p.Name
		existing.Description = p.Description
		return false, nil
	}
	_, err := f.Create(ctx, p)
	return true, err
}

type fakeClientProjects struct {
	mu     sync.Mutex
	rows   map[int64]*models.ClientProject
	uuids  map[int64]string
	nextID int64
	stats  *models.DashboardStats
}

func (f *fakeClientProjects) GetByID(_ context.Context, id int64) (*models.ClientProject, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp, ok := f.rows[id]
	if !ok {
		return nil, false, nil
	}
	c := *cp
	c.CoolifyUUID = f.uuids[cp.ProjectID]
	return &c, true, nil
}

func (f *fakeClientProjects) ListByClientID(_ context.Context, clientID int64) ([]*models.ClientProject, error) {
	list := []*models.ClientProject{}
	for _, cp := range f.rows {
		if cp.ClientID == clientID {
			list = append(list, cp)
		}
	}
	return list, nil
}

func (f *fakeClientProjects) Exists(_ context.Context, clientID, projectID int64) (bool, error) {
	for _, cp := range f.rows {
		if cp.ClientID == clientID && cp.ProjectID == projectID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeClientProjects) Create(_ context.Context, cp *models.ClientProject) (int64, error) {
	f.nextID++
	cp.ID = f.nextID
	f.rows[cp.ID] = cp
	return cp.ID, nil
}

func (f *fakeClientProjects) UpdateSchedule(_ context.Context, id int64, endDate time.Time, notes *string) (bool, error) {
	cp, ok := f.rows[id]
	if !ok {
		return false, nil
	}
	cp.EndDate = endDate
	if notes != nil {
		cp.Notes = notes
	}
	return true, nil
}

func (f *fakeClientProjects) SetStatus(_ context.Context, id int64, status string) (bool, error) {
	cp, ok := f.rows[id]
	if !ok {
		return false, nil
	}
	cp.Status = status
	return true, nil
}

func (f *fakeClientProjects) TransitionStatus(_ context.Context, id int64, from, to string) (bool, error) {
	cp, ok := f.rows[id]
	if !ok || cp.Status != from {
		return false, nil
	}
	cp.Status = to
	return true, nil
}

func (f *fakeClientProjects) ListExpired(context.Context, time.Time) ([]*models.ClientProject, error) {
	return nil, errors.New("not used")
}

func (f *fakeClientProjects) ListRenewed(context.Context, time.Time) ([]*models.ClientProject, error) {
	return nil, errors.New("not used")
}

func (f *fakeClientProjects) Stats(context.Context, time.Time, time.Duration) (*models.DashboardStats, error) {
	return f.stats, nil
}

func (f *fakeClientProjects) Remove(_ context.Context, id int64) (bool, error) {
	_, ok := f.rows[id]
	delete(f.rows, id)
	return ok, nil
}

type fakeDeployer struct {
	err     error
	started []string
	stopped []string
}

func (d *fakeDeployer) StartProject(_ context.Context, uuid string) error {
	if d.err != nil {
		return d.err
	}
	d.started = append(d.started, uuid)
	return nil
}

func (d *fakeDeployer) StopProject(_ context.Context, uuid string) error {
	if d.err != nil {
		return d.err
	}
	d.stopped = append(d.stopped, uuid)
	return nil
}

type fakePlatform struct {
	projects  []coolify.Project
	resources map[string][]coolify.Resource
	backups   json.RawMessage
	err       error
	created   []string
}

func (p *fakePlatform) Projects(context.Context) ([]coolify.Project, error) {
	return p.projects, p.err
}

func (p *fakePlatform) ProjectResources(_ context.Context, uuid string) ([]coolify.Resource, error) {
	if p.err != nil {
		return nil, p.err
	}
	r, ok := p.resources[uuid]
	if !ok {
		return nil, coolify.ErrNotFound
	}
	return r, nil
}

func (p *fakePlatform) ResourceDetails(_ context.Context, uuid string) (json.RawMessage, coolify.Kind, error) {
	if p.err != nil {
		return nil, coolify.KindApplication, p.err
	}
	return nil, coolify.KindApplication, coolify.ErrNotFound
}

func (p *fakePlatform) DatabaseBackups(context.Context, string) (json.RawMessage, error) {
	return p.backups, p.err
}

func (p *fakePlatform) CreateDatabaseBackup(_ context.Context, uuid string) error {
	if p.err != nil {
		return p.err
	}
	p.created = append(p.created, uuid)
	return nil
}

func (p *fakePlatform) DownloadDatabaseBackup(_ context.Context, _, filename string) (io.ReadCloser, error) {
	if p.err != nil {
		return nil, p.err
	}
	return io.NopCloser(strings.NewReader("backup:" + filename)), nil
}

type fakeTables struct {
	columns map[string][]models.TableColumn
	limit   int
	offset  int
	orderBy string
	values  map[string]any
	total   int64
}

func (f *fakeTables) ListTables(context.Context) ([]models.Table, error) {
	list := []models.Table{}
	for name, cols := range f.columns {
		list = append(list, models.Table{Name: name, ColumnCount: int64(len(cols))})
	}
	return list, nil
}

func (f *fakeTables) Columns(_ context.Context, table string) ([]models.TableColumn, error) {
	return f.columns[table], nil
}

func (f *fakeTables) Rows(_ context.Context, _, orderBy string, limit, offset int) ([]models.Row, int64, error) {
	f.orderBy, f.limit, f.offset = orderBy, limit, offset
	return []models.Row{}, f.total, nil
}

func (f *fakeTables) Insert(_ context.Context, _ string, values map[string]any) (models.Row, error) {
	f.values = values
	return models.Row(values), nil
}

func (f *fakeTables) Update(_ context.Context, _, id string, values map[string]any) (models.Row, bool, error) {
	f.values = values
	if id == "missing" {
		return nil, false, nil
	}
	return models.Row(values), true, nil
}

func (f *fakeTables) Delete(_ context.Context, _, id string) (bool, error) {
	return id != "missing", nil
}
