package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nurpe/finishing-touch/internal/config"
	"github.com/nurpe/finishing-touch/internal/model"
	"github.com/nurpe/finishing-touch/internal/pricing"
	"github.com/nurpe/finishing-touch/internal/repository"
)

var testClock = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		App:         config.AppConfig{CurrencySymbol: "₪", Timezone: "UTC"},
		Rates:       pricing.DefaultRateCard(),
	}
}

func nopLogger() zerolog.Logger {
	return zerolog.Nop()
}

type fakeCustomerStore struct {
	byEmail map[string]model.Customer
	upserts int
}

func newFakeCustomerStore() *fakeCustomerStore {
	return &fakeCustomerStore{byEmail: map[string]model.Customer{}}
}

func (f *fakeCustomerStore) UpsertByEmail(_ context.Context, customer model.Customer) (*model.Customer, error) {
	f.upserts++
	existing, ok := f.byEmail[customer.Email]
	if ok {
		existing.Name = customer.Name
		existing.Phone = customer.Phone
	} else {
		existing = customer
		existing.ID = uuid.New()
	}
	f.byEmail[customer.Email] = existing
	return &existing, nil
}

type fakeEstimateStore struct {
	estimates        map[uuid.UUID]model.Estimate
	order            []uuid.UUID
	invoices         *fakeInvoiceStore
	duplicateNumbers int
	converts         int
	clock            time.Time
	// declineOnConvert marks the estimate DECLINED just before the
	// conversion takes its lock, as a concurrent update would.
	declineOnConvert bool
}

func newFakeEstimateStore(invoices *fakeInvoiceStore) *fakeEstimateStore {
	return &fakeEstimateStore{estimates: map[uuid.UUID]model.Estimate{}, invoices: invoices, clock: testClock}
}

func (f *fakeEstimateStore) LatestNumber(context.Context) (string, error) {
	if len(f.order) == 0 {
		return "", nil
	}
	return f.estimates[f.order[len(f.order)-1]].Number, nil
}

func (f *fakeEstimateStore) Create(_ context.Context, estimate model.Estimate) (*model.Estimate, error) {
	if f.duplicateNumbers > 0 {
		f.duplicateNumbers--
		return nil, repository.ErrDuplicateNumber
	}
	for _, existing := range f.estimates {
		if existing.Number == estimate.Number {
			return nil, repository.ErrDuplicateNumber
		}
	}
	f.clock = f.clock.Add(time.Minute)
	estimate.ID = uuid.New()
	estimate.CreatedAt = f.clock
	estimate.UpdatedAt = f.clock
	for i := range estimate.LineItems {
		estimate.LineItems[i].ID = uuid.New()
		estimate.LineItems[i].DocumentID = estimate.ID
	}
	f.estimates[estimate.ID] = estimate
	f.order = append(f.order, estimate.ID)
	return &estimate, nil
}

// add stores an estimate as is, bypassing numbering.
func (f *fakeEstimateStore) add(estimate model.Estimate) model.Estimate {
	if estimate.ID == uuid.Nil {
		estimate.ID = uuid.New()
	}
	f.estimates[estimate.ID] = estimate
	f.order = append(f.order, estimate.ID)
	return estimate
}

func (f *fakeEstimateStore) Get(_ context.Context, id uuid.UUID) (*model.Estimate, error) {
	estimate, ok := f.estimates[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if f.invoices != nil {
		if invoice, ok := f.invoices.findByEstimate(id); ok {
			estimate.InvoiceID = &invoice.ID
			estimate.InvoiceNumber = &invoice.Number
		}
	}
	return &estimate, nil
}

func (f *fakeEstimateStore) List(_ context.Context, filter model.EstimateFilter) ([]model.Estimate, error) {
	var result []model.Estimate
	search := strings.ToLower(filter.Search)
	for i := len(f.order) - 1; i >= 0; i-- {
		estimate := f.estimates[f.order[i]]
		if filter.Status != nil && estimate.Status != *filter.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(estimate.Number), search) &&
			!strings.Contains(strings.ToLower(estimate.CustomerName), search) {
			continue
		}
		result = append(result, estimate)
	}
	return result, nil
}

func (f *fakeEstimateStore) Update(_ context.Context, id uuid.UUID, status *model.EstimateStatus, notes *string) error {
	estimate, ok := f.estimates[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if status != nil {
		estimate.Status = *status
	}
	if notes != nil {
		estimate.Notes = notes
	}
	f.estimates[id] = estimate
	return nil
}

func (f *fakeEstimateStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.estimates[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.estimates, id)
	for i, existing := range f.order {
		if existing == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeEstimateStore) ConvertToInvoice(ctx context.Context, estimateID uuid.UUID, invoice model.Invoice) (*model.Invoice, error) {
	estimate, ok := f.estimates[estimateID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if f.declineOnConvert {
		estimate.Status = model.EstimateStatusDeclined
		f.estimates[estimateID] = estimate
	}
	if estimate.Status == model.EstimateStatusDeclined {
		return nil, repository.ErrEstimateDeclined
	}
	if _, exists := f.invoices.findByEstimate(estimateID); exists {
		return nil, repository.ErrAlreadyInvoiced
	}
	invoice.DerivedFromEstimateID = &estimateID
	saved, err := f.invoices.Create(ctx, invoice)
	if err != nil {
		return nil, err
	}
	estimate.Status = model.EstimateStatusInvoiced
	f.estimates[estimateID] = estimate
	f.converts++
	return saved, nil
}

type fakeInvoiceStore struct {
	invoices         map[uuid.UUID]model.Invoice
	order            []uuid.UUID
	duplicateNumbers int
	staleLookups     int
	clock            time.Time
}

func newFakeInvoiceStore() *fakeInvoiceStore {
	return &fakeInvoiceStore{invoices: map[uuid.UUID]model.Invoice{}, clock: testClock}
}

func (f *fakeInvoiceStore) findByEstimate(estimateID uuid.UUID) (model.Invoice, bool) {
	for _, invoice := range f.invoices {
		if invoice.DerivedFromEstimateID != nil && *invoice.DerivedFromEstimateID == estimateID {
			return invoice, true
		}
	}
	return model.Invoice{}, false
}

func (f *fakeInvoiceStore) LatestNumber(context.Context) (string, error) {
	if len(f.order) == 0 {
		return "", nil
	}
	return f.invoices[f.order[len(f.order)-1]].Number, nil
}

func (f *fakeInvoiceStore) Create(_ context.Context, invoice model.Invoice) (*model.Invoice, error) {
	if f.duplicateNumbers > 0 {
		f.duplicateNumbers--
		return nil, repository.ErrDuplicateNumber
	}
	for _, existing := range f.invoices {
		if existing.Number == invoice.Number {
			return nil, repository.ErrDuplicateNumber
		}
	}
	if invoice.DerivedFromEstimateID != nil {
		if _, exists := f.findByEstimate(*invoice.DerivedFromEstimateID); exists {
			return nil, repository.ErrAlreadyInvoiced
		}
	}
	f.clock = f.clock.Add(time.Minute)
	invoice.ID = uuid.New()
	invoice.CreatedAt = f.clock
	invoice.UpdatedAt = f.clock
	for i := range invoice.LineItems {
		invoice.LineItems[i].ID = uuid.New()
		invoice.LineItems[i].DocumentID = invoice.ID
	}
	f.invoices[invoice.ID] = invoice
	f.order = append(f.order, invoice.ID)
	return &invoice, nil
}

func (f *fakeInvoiceStore) Get(_ context.Context, id uuid.UUID) (*model.Invoice, error) {
	invoice, ok := f.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &invoice, nil
}

func (f *fakeInvoiceStore) GetByEstimate(_ context.Context, estimateID uuid.UUID) (*model.Invoice, error) {
	if f.staleLookups > 0 {
		f.staleLookups--
		return nil, gorm.ErrRecordNotFound
	}
	invoice, ok := f.findByEstimate(estimateID)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &invoice, nil
}

func (f *fakeInvoiceStore) List(_ context.Context, filter model.InvoiceFilter) ([]model.Invoice, error) {
	var result []model.Invoice
	search := strings.ToLower(filter.Search)
	for i := len(f.order) - 1; i >= 0; i-- {
		invoice := f.invoices[f.order[i]]
		if filter.Status != nil && invoice.Status != *filter.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(invoice.Number), search) &&
			!strings.Contains(strings.ToLower(invoice.CustomerName), search) {
			continue
		}
		result = append(result, invoice)
	}
	return result, nil
}

func (f *fakeInvoiceStore) UpdateStatus(_ context.Context, id uuid.UUID, status model.InvoiceStatus) error {
	invoice, ok := f.invoices[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	invoice.Status = status
	f.invoices[id] = invoice
	return nil
}

func (f *fakeInvoiceStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.invoices[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.invoices, id)
	return nil
}

type fakeDocuments struct{}

func (fakeDocuments) EstimatePDF(model.Estimate) ([]byte, error) { return []byte("%PDF-estimate"), nil }
func (fakeDocuments) InvoicePDF(model.Invoice) ([]byte, error)   { return []byte("%PDF-invoice"), nil }

type fakeEmployeeStore struct {
	employees map[uuid.UUID]model.Employee
}

func newFakeEmployeeStore(employees ...model.Employee) *fakeEmployeeStore {
	f := &fakeEmployeeStore{employees: map[uuid.UUID]model.Employee{}}
	for _, employee := range employees {
		f.employees[employee.ID] = employee
	}
	return f
}

func (f *fakeEmployeeStore) Create(_ context.Context, employee model.Employee) (*model.Employee, error) {
	employee.ID = uuid.New()
	f.employees[employee.ID] = employee
	return &employee, nil
}

func (f *fakeEmployeeStore) List(context.Context) ([]model.Employee, error) {
	result := make([]model.Employee, 0, len(f.employees))
	for _, employee := range f.employees {
		result = append(result, employee)
	}
	return result, nil
}

func (f *fakeEmployeeStore) Get(_ context.Context, id uuid.UUID) (*model.Employee, error) {
	employee, ok := f.employees[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &employee, nil
}

func (f *fakeEmployeeStore) Update(_ context.Context, id uuid.UUID, name, phone *string, role *model.Role) (*model.Employee, error) {
	employee, ok := f.employees[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if name != nil {
		employee.Name = *name
	}
	if phone != nil {
		employee.Phone = *phone
	}
	if role != nil {
		employee.Role = *role
	}
	f.employees[id] = employee
	return &employee, nil
}

func (f *fakeEmployeeStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.employees[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.employees, id)
	return nil
}

func (f *fakeEmployeeStore) MissingIDs(_ context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	var missing []uuid.UUID
	for _, id := range ids {
		if _, ok := f.employees[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

type fakeJobStore struct {
	jobs      map[uuid.UUID]model.Job
	employees *fakeEmployeeStore
}

func newFakeJobStore(employees *fakeEmployeeStore) *fakeJobStore {
	return &fakeJobStore{jobs: map[uuid.UUID]model.Job{}, employees: employees}
}

func (f *fakeJobStore) assign(job *model.Job, employeeIDs []uuid.UUID) {
	for _, employeeID := range employeeIDs {
		duplicate := false
		for _, existing := range job.Assignments {
			if existing.EmployeeID == employeeID {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		employee := f.employees.employees[employeeID]
		job.Assignments = append(job.Assignments, model.JobAssignment{
			ID:           uuid.New(),
			JobID:        job.ID,
			EmployeeID:   employeeID,
			EmployeeName: employee.Name,
			EmployeeRole: employee.Role,
		})
	}
}

func (f *fakeJobStore) Create(_ context.Context, job model.Job, employeeIDs []uuid.UUID) (*model.Job, error) {
	job.ID = uuid.New()
	job.Assignments = []model.JobAssignment{}
	f.assign(&job, employeeIDs)
	f.jobs[job.ID] = job
	return &job, nil
}

func (f *fakeJobStore) List(context.Context, model.JobFilter) ([]model.Job, error) {
	result := make([]model.Job, 0, len(f.jobs))
	for _, job := range f.jobs {
		result = append(result, job)
	}
	return result, nil
}

func (f *fakeJobStore) Get(_ context.Context, id uuid.UUID) (*model.Job, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &job, nil
}

func (f *fakeJobStore) Update(_ context.Context, id uuid.UUID, changes model.JobChanges) (*model.Job, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if changes.Title != nil {
		job.Title = *changes.Title
	}
	if changes.Address != nil {
		job.Address = *changes.Address
	}
	if changes.StartDateTime != nil {
		job.StartDateTime = *changes.StartDateTime
	}
	if changes.EndDateTime != nil {
		job.EndDateTime = *changes.EndDateTime
	}
	if changes.EstimateID != nil {
		job.EstimateID = changes.EstimateID
	}
	if changes.EmployeeIDs != nil {
		job.Assignments = []model.JobAssignment{}
		f.assign(&job, changes.EmployeeIDs)
	}
	f.jobs[id] = job
	return &job, nil
}

func (f *fakeJobStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.jobs[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.jobs, id)
	return nil
}

func (f *fakeJobStore) AddAssignments(_ context.Context, jobID uuid.UUID, employeeIDs []uuid.UUID) error {
	job, ok := f.jobs[jobID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	f.assign(&job, employeeIDs)
	f.jobs[jobID] = job
	return nil
}

func (f *fakeJobStore) RemoveAssignment(_ context.Context, jobID, assignmentID uuid.UUID) error {
	job, ok := f.jobs[jobID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i, assignment := range job.Assignments {
		if assignment.ID == assignmentID {
			job.Assignments = append(job.Assignments[:i], job.Assignments[i+1:]...)
			f.jobs[jobID] = job
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeTimeEntryStore struct {
	entries map[uuid.UUID]model.TimeEntry
}

func newFakeTimeEntryStore() *fakeTimeEntryStore {
	return &fakeTimeEntryStore{entries: map[uuid.UUID]model.TimeEntry{}}
}

func (f *fakeTimeEntryStore) Create(_ context.Context, entry model.TimeEntry) (*model.TimeEntry, error) {
	if entry.ClockOut == nil {
		for _, existing := range f.entries {
			if existing.EmployeeID == entry.EmployeeID && existing.Open() {
				return nil, repository.ErrOpenTimeEntry
			}
		}
	}
	entry.ID = uuid.New()
	f.entries[entry.ID] = entry
	return &entry, nil
}

func (f *fakeTimeEntryStore) Get(_ context.Context, id uuid.UUID) (*model.TimeEntry, error) {
	entry, ok := f.entries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &entry, nil
}

func (f *fakeTimeEntryStore) FindOpen(_ context.Context, employeeID uuid.UUID) (*model.TimeEntry, error) {
	var found *model.TimeEntry
	for _, entry := range f.entries {
		if entry.EmployeeID == employeeID && entry.Open() {
			if found == nil || entry.ClockIn.After(found.ClockIn) {
				e := entry
				found = &e
			}
		}
	}
	if found == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return found, nil
}

func (f *fakeTimeEntryStore) Close(_ context.Context, id uuid.UUID, clockOut time.Time, durationMinutes int64) (*model.TimeEntry, error) {
	entry, ok := f.entries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	entry.ClockOut = &clockOut
	entry.DurationMinutes = &durationMinutes
	f.entries[id] = entry
	return &entry, nil
}

func (f *fakeTimeEntryStore) List(_ context.Context, filter model.TimeEntryFilter) ([]model.TimeEntry, error) {
	var result []model.TimeEntry
	for _, entry := range f.entries {
		if filter.EmployeeID != nil && entry.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.From != nil && entry.ClockIn.Before(*filter.From) {
			continue
		}
		if filter.To != nil && entry.ClockIn.After(*filter.To) {
			continue
		}
		if filter.OpenOnly && !entry.Open() {
			continue
		}
		result = append(result, entry)
	}
	return result, nil
}

type fakeExporter struct {
	sheets []model.Timesheet
}

func (f *fakeExporter) Timesheet(sheet model.Timesheet) ([]byte, error) {
	f.sheets = append(f.sheets, sheet)
	return []byte("xlsx"), nil
}

type fakeUserStore struct {
	users map[string]model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]model.User{}}
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	user, ok := f.users[strings.ToLower(email)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, user := range f.users {
		if user.ID == id {
			return &user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) Create(_ context.Context, user model.User) (*model.User, error) {
	if _, ok := f.users[user.Email]; ok {
		return nil, repository.ErrDuplicateEmail
	}
	user.ID = uuid.New()
	f.users[user.Email] = user
	return &user, nil
}

type fakeTokenIssuer struct{}

func (fakeTokenIssuer) Issue(user model.User) (string, time.Time, error) {
	return "token-" + user.ID.String(), testClock.Add(time.Hour), nil
}

type fakeLeadStore struct {
	leads []model.Lead
}

func (f *fakeLeadStore) Create(_ context.Context, lead model.Lead) (*model.Lead, error) {
	lead.ID = uuid.New()
	f.leads = append(f.leads, lead)
	return &lead, nil
}

func (f *fakeLeadStore) List(context.Context) ([]model.Lead, error) {
	return f.leads, nil
}
