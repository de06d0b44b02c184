package store_test

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/calvinalkan/tuimorrow/internal/store"
	"github.com/calvinalkan/tuimorrow/internal/task"
)

func sortByName(a, b task.Task) bool {
	return a.Name < b.Name
}

// Contract: the (name, dueDate) pair is unique; a duplicate insert fails and
// leaves exactly one row.
func Test_InsertTask_Returns_ConstraintViolation_When_Name_And_DueDate_Exist(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	first := task.Task{Name: "Report", ListName: "Work", DueDate: day(2024, time.March, 15), CreateDate: day(2024, time.January, 1)}
	dup := task.Task{Name: "Report", ListName: "Home", DueDate: day(2024, time.March, 15), CreateDate: day(2024, time.January, 2)}

	err := s.InsertTask(t.Context(), first)
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}

	err = s.InsertTask(t.Context(), dup)
	if !errors.Is(err, store.ErrConstraintViolation) {
		t.Fatalf("second insert err = %v, want ErrConstraintViolation", err)
	}

	var storeErr *store.Error
	if !errors.As(err, &storeErr) {
		t.Fatalf("err is not *store.Error: %T", err)
	}

	if storeErr.Table != "Task" || storeErr.Key != "Report@2024-03-15" {
		t.Fatalf("error context = table %q key %q", storeErr.Table, storeErr.Key)
	}

	got, err := s.QueryTasks(t.Context(), nil)
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	if diff := cmp.Diff([]task.Task{first}, got); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func Test_InsertTask_Accepts_Same_Name_When_DueDate_Differs(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	for _, due := range []task.Date{day(2024, time.March, 15), day(2024, time.March, 16)} {
		err := s.InsertTask(t.Context(), task.Task{Name: "Gym", ListName: "Home", DueDate: due, CreateDate: day(2024, time.March, 1)})
		if err != nil {
			t.Fatalf("insert due %s: %v", due, err)
		}
	}

	got, err := s.QueryTasks(t.Context(), nil)
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("rows = %d, want 2", len(got))
	}
}

// Contract: every column round-trips; createDate and dueDate are never swapped.
func Test_QueryTasks_Round_Trips_All_Fields_When_Task_Inserted(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	want := task.Task{
		Name:       "File taxes",
		ListName:   "Home",
		DueDate:    day(2024, time.March, 15),
		CreateDate: day(2024, time.January, 1),
	}

	err := s.InsertTask(t.Context(), want)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.QueryTasks(t.Context(), nil)
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("rows = %d, want 1", len(got))
	}

	if got[0] != want {
		t.Fatalf("task = %+v, want %+v", got[0], want)
	}

	db := openRaw(t, s)

	var createDate, dueDate string

	err = db.QueryRow("SELECT createDate, dueDate FROM Task").Scan(&createDate, &dueDate)
	if err != nil {
		t.Fatalf("raw select: %v", err)
	}

	if !strings.HasPrefix(createDate, "2024-01-01") || !strings.HasPrefix(dueDate, "2024-03-15") {
		t.Fatalf("stored createDate=%q dueDate=%q", createDate, dueDate)
	}
}

func Test_QueryTasks_Returns_Only_Matching_List_When_Filter_Set(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	fixtures := []task.Task{
		{Name: "Standup", ListName: "Work", DueDate: day(2024, time.January, 2), CreateDate: day(2024, time.January, 1)},
		{Name: "Dishes", ListName: "Home", DueDate: day(2024, time.January, 2), CreateDate: day(2024, time.January, 1)},
		{Name: "Review", ListName: "Work", DueDate: day(2024, time.January, 3), CreateDate: day(2024, time.January, 1)},
		{Name: "Laundry", ListName: "Home", DueDate: day(2024, time.January, 4), CreateDate: day(2024, time.January, 1)},
	}

	for _, tk := range fixtures {
		err := s.InsertTask(t.Context(), tk)
		if err != nil {
			t.Fatalf("insert %s: %v", tk.Name, err)
		}
	}

	got, err := s.QueryTasks(t.Context(), strPtr("Work"))
	if err != nil {
		t.Fatalf("query work: %v", err)
	}

	want := []task.Task{fixtures[0], fixtures[2]}
	if diff := cmp.Diff(want, got, cmpopts.SortSlices(sortByName)); diff != "" {
		t.Fatalf("work tasks mismatch (-want +got):\n%s", diff)
	}

	all, err := s.QueryTasks(t.Context(), nil)
	if err != nil {
		t.Fatalf("query all: %v", err)
	}

	if diff := cmp.Diff(fixtures, all, cmpopts.SortSlices(sortByName)); diff != "" {
		t.Fatalf("all tasks mismatch (-want +got):\n%s", diff)
	}
}

func Test_QueryTasks_Treats_Filter_As_Value_When_It_Contains_SQL(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	err := s.InsertTask(t.Context(), task.Task{Name: "Secret", ListName: "Work", DueDate: day(2024, time.May, 1), CreateDate: day(2024, time.May, 1)})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	for _, filter := range []string{"x' OR '1'='1", "Work OR 1=1", "Work; DROP TABLE Task"} {
		got, queryErr := s.QueryTasks(t.Context(), strPtr(filter))
		if queryErr != nil {
			t.Fatalf("query %q: %v", filter, queryErr)
		}

		if len(got) != 0 {
			t.Fatalf("query %q returned %d rows, want 0", filter, len(got))
		}
	}

	odd := "O'Brien \"quoted\""

	err = s.InsertTask(t.Context(), task.Task{Name: "Call", ListName: odd, DueDate: day(2024, time.May, 2), CreateDate: day(2024, time.May, 1)})
	if err != nil {
		t.Fatalf("insert odd list: %v", err)
	}

	got, err := s.QueryTasks(t.Context(), strPtr(odd))
	if err != nil {
		t.Fatalf("query odd list: %v", err)
	}

	if len(got) != 1 || got[0].ListName != odd {
		t.Fatalf("odd list query = %+v", got)
	}
}

func Test_QueryTasks_Returns_Empty_Slice_When_No_Rows(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	got, err := s.QueryTasks(t.Context(), nil)
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	if got == nil || len(got) != 0 {
		t.Fatalf("tasks = %#v, want empty non-nil slice", got)
	}
}

func Test_QueryTasks_Returns_MalformedStoredValue_When_Date_Is_Corrupt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		createDate any
		dueDate    any
	}{
		{name: "due not a date", createDate: "2024-01-01", dueDate: "next tuesday"},
		{name: "create not a date", createDate: "01/01/2024", dueDate: "2024-01-02"},
		{name: "due with time", createDate: "2024-01-01", dueDate: "2024-01-02 10:00:00"},
		{name: "due null", createDate: "2024-01-01", dueDate: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := openTestStore(t)
			db := openRaw(t, s)

			mustExec(t, db, "INSERT INTO Task (name, list, createDate, dueDate) VALUES (?, ?, ?, ?)",
				"Broken", "Work", tc.createDate, tc.dueDate)

			_, err := s.QueryTasks(t.Context(), nil)
			if !errors.Is(err, store.ErrMalformedStoredValue) {
				t.Fatalf("err = %v, want ErrMalformedStoredValue", err)
			}

			if errors.Is(err, store.ErrNotFound) {
				t.Fatal("malformed row reported as not found")
			}
		})
	}
}

func Test_QueryTasks_Returns_Rows_Inserted_By_Other_Writers(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	db := openRaw(t, s)

	mustExec(t, db, "INSERT INTO Task (name, list, createDate, dueDate) VALUES ('Seeded', 'Home', '2023-12-31', '2024-01-05')")

	got, err := s.QueryTasks(t.Context(), nil)
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	names := make([]string, 0, len(got))
	for _, tk := range got {
		names = append(names, tk.Name)
	}

	if !slices.Equal(names, []string{"Seeded"}) {
		t.Fatalf("names = %v", names)
	}

	if got[0].CreateDate != day(2023, time.December, 31) || got[0].DueDate != day(2024, time.January, 5) {
		t.Fatalf("dates = %s / %s", got[0].CreateDate, got[0].DueDate)
	}
}

func Test_InsertTask_Rejects_Task_When_Dates_Cannot_Be_Read_Back(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	good := task.Task{Name: "Report", ListName: "Work", DueDate: day(2024, time.March, 15), CreateDate: day(2024, time.January, 1)}

	err := s.InsertTask(t.Context(), good)
	if err != nil {
		t.Fatalf("insert valid task: %v", err)
	}

	for _, bad := range []task.Task{
		{Name: "Zero", ListName: "Work"},
		{Name: "NoCreate", ListName: "Work", DueDate: day(2024, time.March, 15)},
		{Name: "FarFuture", ListName: "Work", DueDate: task.NewDate(10000, time.January, 1), CreateDate: day(2024, time.January, 1)},
		{Name: "Unnormalized", ListName: "Work", DueDate: task.Date{Year: 2024, Month: time.February, Day: 30}, CreateDate: day(2024, time.January, 1)},
	} {
		err = s.InsertTask(t.Context(), bad)
		if !errors.Is(err, store.ErrConstraintViolation) || !errors.Is(err, task.ErrInvalidDate) {
			t.Fatalf("insert %s err = %v, want ErrConstraintViolation wrapping ErrInvalidDate", bad.Name, err)
		}
	}

	got, err := s.QueryTasks(t.Context(), nil)
	if err != nil {
		t.Fatalf("query after rejected inserts: %v", err)
	}

	if diff := cmp.Diff([]task.Task{good}, got); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}
