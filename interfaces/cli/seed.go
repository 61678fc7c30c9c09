package cli

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"time"

	"mindbloom-backend/application/ports"
	"mindbloom-backend/domain/core/entities"
	"mindbloom-backend/domain/core/valueobjects"
	"mindbloom-backend/infrastructure/config"
	"mindbloom-backend/infrastructure/di"
	pkgerrors "mindbloom-backend/pkg/errors"
	"mindbloom-backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

//go:embed default_seed.yaml
var defaultSeed []byte

// SeedData is the content of a seed file.
type SeedData struct {
	Caregivers []SeedCaregiver `yaml:"caregivers"`
	Patients   []SeedPatient   `yaml:"patients"`
	Memories   []SeedMemory    `yaml:"memories"`
	Events     []SeedEvent     `yaml:"events"`
}

type SeedCaregiver struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name"`
	Email          string `yaml:"email"`
	Specialization string `yaml:"specialization"`
}

type SeedPatient struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Age         int               `yaml:"age"`
	Email       string            `yaml:"email"`
	CaregiverID string            `yaml:"caregiver_id"`
	MedicalInfo map[string]string `yaml:"medical_info"`
}

// SeedMemory is owned by UserID, or by the patient's caregiver when empty.
type SeedMemory struct {
	PatientID  string   `yaml:"patient_id"`
	UserID     string   `yaml:"user_id"`
	Title      string   `yaml:"title"`
	Content    string   `yaml:"content"`
	Mood       string   `yaml:"mood"`
	Category   string   `yaml:"category"`
	Importance string   `yaml:"importance"`
	Tags       []string `yaml:"tags"`
	Date       string   `yaml:"date"`
}

// SeedEvent is dated by Date, or by DaysFromToday when Date is empty.
type SeedEvent struct {
	UserID        string `yaml:"user_id"`
	Title         string `yaml:"title"`
	Description   string `yaml:"description"`
	EventType     string `yaml:"event_type"`
	Date          string `yaml:"date"`
	DaysFromToday int    `yaml:"days_from_today"`
	StartTime     string `yaml:"start_time"`
	EndTime       string `yaml:"end_time"`
	Priority      string `yaml:"priority"`
}

// SeedReport counts what Seed wrote.
type SeedReport struct {
	Skipped    bool
	Caregivers int
	Patients   int
	Memories   int
	Events     int
}

// ParseSeed decodes a seed file.
func ParseSeed(data []byte) (*SeedData, error) {
	var seed SeedData
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	for i, p := range seed.Patients {
		if p.Name == "" {
			return nil, fmt.Errorf("patient %d: name is required", i)
		}
	}
	for i, c := range seed.Caregivers {
		if c.Name == "" {
			return nil, fmt.Errorf("caregiver %d: name is required", i)
		}
	}
	for i, m := range seed.Memories {
		if m.PatientID == "" || m.Title == "" {
			return nil, fmt.Errorf("memory %d: patient_id and title are required", i)
		}
	}
	for i, e := range seed.Events {
		if e.UserID == "" || e.Title == "" {
			return nil, fmt.Errorf("event %d: user_id and title are required", i)
		}
	}
	return &seed, nil
}

// Seed writes data into empty repositories. Nothing is written when any
// patient already exists. Duplicate memories and events are skipped.
func Seed(ctx context.Context, repos *ports.Repositories, data *SeedData, now time.Time) (*SeedReport, error) {
	existing, err := repos.Patients.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	report := &SeedReport{}
	if len(existing) > 0 {
		report.Skipped = true
		return report, nil
	}

	caregivers := make(map[string]*entities.Caregiver, len(data.Caregivers))
	ordered := make([]*entities.Caregiver, 0, len(data.Caregivers))
	for _, c := range data.Caregivers {
		cg := &entities.Caregiver{
			ID:             idOr(c.ID),
			Name:           c.Name,
			Email:          c.Email,
			Specialization: c.Specialization,
			Patients:       []string{},
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		caregivers[cg.ID] = cg
		ordered = append(ordered, cg)
	}

	owners := make(map[string]string, len(data.Patients))
	for _, p := range data.Patients {
		patient := &entities.Patient{
			ID:          idOr(p.ID),
			Name:        p.Name,
			Age:         p.Age,
			Email:       p.Email,
			CaregiverID: p.CaregiverID,
			MedicalInfo: p.MedicalInfo,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if patient.CaregiverID != "" {
			cg, ok := caregivers[patient.CaregiverID]
			if !ok {
				return nil, fmt.Errorf("patient %s: unknown caregiver %s", patient.Name, patient.CaregiverID)
			}
			cg.AssignPatient(patient.ID, now)
		}
		if err := repos.Patients.Save(ctx, patient); err != nil {
			return nil, fmt.Errorf("save patient %s: %w", patient.Name, err)
		}
		owners[patient.ID] = patient.CaregiverID
		report.Patients++
	}

	for _, cg := range ordered {
		if err := repos.Caregivers.Save(ctx, cg); err != nil {
			return nil, fmt.Errorf("save caregiver %s: %w", cg.Name, err)
		}
		report.Caregivers++
	}

	for _, m := range data.Memories {
		owner := m.UserID
		if owner == "" {
			owner = owners[m.PatientID]
		}
		if owner == "" {
			owner = m.PatientID
		}
		memory := &entities.Memory{
			ID:         uuid.NewString(),
			UserID:     owner,
			PatientID:  m.PatientID,
			Title:      m.Title,
			Content:    m.Content,
			Mood:       valueobjects.ParseMood(m.Mood),
			Category:   valueOr(m.Category, "general"),
			Importance: valueOr(m.Importance, "medium"),
			Tags:       nonNil(m.Tags),
			Date:       m.Date,
			Source:     entities.SourceManual,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := repos.Memories.Create(ctx, memory); err != nil {
			if pkgerrors.IsConflict(err) {
				continue
			}
			return nil, fmt.Errorf("create memory %s: %w", memory.Title, err)
		}
		report.Memories++
	}

	for _, e := range data.Events {
		date := e.Date
		if date == "" {
			date = utils.DateOf(now.AddDate(0, 0, e.DaysFromToday))
		}
		event := &entities.CalendarEvent{
			ID:          uuid.NewString(),
			UserID:      e.UserID,
			Title:       e.Title,
			Description: e.Description,
			EventType:   entities.EventType(valueOr(e.EventType, string(entities.EventReminder))),
			Date:        date,
			StartTime:   e.StartTime,
			EndTime:     e.EndTime,
			Priority:    entities.Priority(valueOr(e.Priority, string(entities.PriorityMedium))),
			Status:      entities.StatusPending,
			Reminders:   []string{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := repos.Calendar.Create(ctx, event); err != nil {
			if pkgerrors.IsConflict(err) {
				continue
			}
			return nil, fmt.Errorf("create event %s: %w", event.Title, err)
		}
		report.Events++
	}

	return report, nil
}

func newSeedCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert sample patients, caregivers, memories and events",
		Long: `Seed an empty table with sample data. Without --file a built-in demo
household is used. Nothing is written when patients already exist.

  mindbloomctl seed
  mindbloomctl seed --file seed.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := defaultSeed
			if file != "" {
				b, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("read seed file: %w", err)
				}
				raw = b
			}
			data, err := ParseSeed(raw)
			if err != nil {
				return err
			}

			cfg, err := a.config()
			if err != nil {
				return err
			}
			if cfg.StorageBackend == config.StorageMemory {
				return fmt.Errorf("seeding needs STORAGE_BACKEND=%s", config.StorageDynamoDB)
			}
			client, err := a.dynamo(cmd.Context())
			if err != nil {
				return err
			}
			repos := di.ProvideRepositories(client, cfg, a.logger)

			var report *SeedReport
			err = a.locked(cmd.Context(), "seed", func(ctx context.Context) error {
				report, err = Seed(ctx, repos, data, utils.SystemClock())
				return err
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if report.Skipped {
				fmt.Fprintln(out, "Table already has patients, nothing seeded")
				return nil
			}
			fmt.Fprintf(out, "Seeded %d caregivers, %d patients, %d memories, %d events\n",
				report.Caregivers, report.Patients, report.Memories, report.Events)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML seed file")
	return cmd
}

func idOr(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
