package profiles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"lbs-connect/internal/industries"
)

type PGRepo struct {
	DB *sql.DB
}

// current_role is a reserved word in Postgres and must stay quoted.
const profileColumns = `id, user_id, user_type, email, first_name, last_name, linkedin_url,
  years_of_experience, undergraduate_university, languages, current_location, "current_role",
  current_company, lbs_program, graduation_year, cv_path, cv_uploaded_at, networking_goal,
  target_industries, specific_interests, send_weekly_updates, connect_with_students,
  connect_with_alumni, onboarding_completed, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (Profile, error) {
	var p Profile
	var userType string
	var firstName, lastName, linkedIn, undergrad, location, role, company, program, cvPath, goal, interests sql.NullString
	var years, gradYear sql.NullInt64
	var cvUploadedAt sql.NullTime
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&userType,
		&p.Email,
		&firstName,
		&lastName,
		&linkedIn,
		&years,
		&undergrad,
		pq.Array(&p.Languages),
		&location,
		&role,
		&company,
		&program,
		&gradYear,
		&cvPath,
		&cvUploadedAt,
		&goal,
		pq.Array(&p.TargetIndustries),
		&interests,
		&p.SendWeeklyUpdates,
		&p.ConnectWithStudents,
		&p.ConnectWithAlumni,
		&p.OnboardingCompleted,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return Profile{}, err
	}
	p.UserType = UserType(userType)
	p.FirstName = firstName.String
	p.LastName = lastName.String
	p.LinkedInURL = linkedIn.String
	p.UndergraduateUniversity = undergrad.String
	p.CurrentLocation = location.String
	p.CurrentRole = role.String
	p.CurrentCompany = company.String
	p.LBSProgram = program.String
	p.CVPath = cvPath.String
	p.NetworkingGoal = goal.String
	p.SpecificInterests = interests.String
	if years.Valid {
		v := int(years.Int64)
		p.YearsOfExperience = &v
	}
	if gradYear.Valid {
		v := int(gradYear.Int64)
		p.GraduationYear = &v
	}
	if cvUploadedAt.Valid {
		t := cvUploadedAt.Time
		p.CVUploadedAt = &t
	}
	if p.Languages == nil {
		p.Languages = []string{}
	}
	if p.TargetIndustries == nil {
		p.TargetIndustries = []string{}
	}
	return p, nil
}

func (r *PGRepo) UpsertOnboarding(ctx context.Context, p Profile) (Profile, error) {
	query := `
INSERT INTO profiles (id, user_id, user_type, email, cv_path, cv_uploaded_at, networking_goal,
  target_industries, specific_interests, send_weekly_updates, connect_with_students,
  connect_with_alumni, onboarding_completed, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, TRUE, now(), now())
ON CONFLICT (user_id) DO UPDATE SET
  user_type = EXCLUDED.user_type,
  email = COALESCE(NULLIF(EXCLUDED.email, ''), profiles.email),
  cv_path = EXCLUDED.cv_path,
  cv_uploaded_at = EXCLUDED.cv_uploaded_at,
  networking_goal = EXCLUDED.networking_goal,
  target_industries = EXCLUDED.target_industries,
  specific_interests = EXCLUDED.specific_interests,
  send_weekly_updates = EXCLUDED.send_weekly_updates,
  connect_with_students = EXCLUDED.connect_with_students,
  connect_with_alumni = EXCLUDED.connect_with_alumni,
  onboarding_completed = TRUE,
  updated_at = now()
RETURNING ` + profileColumns
	var uploadedAt any
	if p.CVUploadedAt != nil {
		uploadedAt = *p.CVUploadedAt
	}
	row := r.DB.QueryRowContext(ctx, query,
		uuid.NewString(),
		p.UserID,
		string(p.UserType),
		p.Email,
		nullableString(p.CVPath),
		uploadedAt,
		nullableString(p.NetworkingGoal),
		pq.Array(nonNil(p.TargetIndustries)),
		nullableString(p.SpecificInterests),
		p.SendWeeklyUpdates,
		p.ConnectWithStudents,
		p.ConnectWithAlumni,
	)
	return scanProfile(row)
}

func (r *PGRepo) GetByUserID(ctx context.Context, userID string) (Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1 LIMIT 1`
	p, err := scanProfile(r.DB.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	return p, nil
}

func (r *PGRepo) GetByUserIDs(ctx context.Context, userIDs []string) (map[string]Profile, error) {
	out := make(map[string]Profile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = ANY($1)`
	list, err := r.queryProfiles(ctx, query, pq.Array(userIDs))
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		out[p.UserID] = p
	}
	return out, nil
}

func (r *PGRepo) UpdateSettings(ctx context.Context, userID string, s Settings) (Profile, error) {
	query := `
UPDATE profiles SET
  send_weekly_updates = $2,
  connect_with_students = $3,
  connect_with_alumni = $4,
  updated_at = now()
WHERE user_id = $1
RETURNING ` + profileColumns
	return r.updateReturning(ctx, query, userID, s.SendWeeklyUpdates, s.ConnectWithStudents, s.ConnectWithAlumni)
}

func (r *PGRepo) Update(ctx context.Context, userID string, u Update) (Profile, error) {
	var sets []string
	args := []any{userID}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	addString := func(column string, v *string) {
		if v != nil {
			add(column, nullableString(strings.TrimSpace(*v)))
		}
	}
	addString("first_name", u.FirstName)
	addString("last_name", u.LastName)
	addString("linkedin_url", u.LinkedInURL)
	addString("current_location", u.CurrentLocation)
	addString(`"current_role"`, u.CurrentRole)
	addString("current_company", u.CurrentCompany)
	addString("networking_goal", u.NetworkingGoal)
	addString("specific_interests", u.SpecificInterests)
	if u.TargetIndustries != nil {
		add("target_industries", pq.Array(nonNil(*u.TargetIndustries)))
	}
	if u.Languages != nil {
		add("languages", pq.Array(nonNil(*u.Languages)))
	}
	if len(sets) == 0 {
		return r.GetByUserID(ctx, userID)
	}
	query := `UPDATE profiles SET ` + strings.Join(sets, ", ") + `, updated_at = now()
WHERE user_id = $1
RETURNING ` + profileColumns
	return r.updateReturning(ctx, query, args...)
}

func (r *PGRepo) ApplyCVFields(ctx context.Context, userID string, f CVFields) (Profile, error) {
	query := `
UPDATE profiles SET
  first_name = COALESCE($2, first_name),
  last_name = COALESCE($3, last_name),
  linkedin_url = COALESCE($4, linkedin_url),
  years_of_experience = COALESCE($5, years_of_experience),
  undergraduate_university = COALESCE($6, undergraduate_university),
  languages = CASE WHEN cardinality($7::text[]) > 0 THEN $7::text[] ELSE languages END,
  current_location = COALESCE($8, current_location),
  "current_role" = COALESCE($9, "current_role"),
  current_company = COALESCE($10, current_company),
  lbs_program = COALESCE($11, lbs_program),
  graduation_year = COALESCE($12, graduation_year),
  updated_at = now()
WHERE user_id = $1
RETURNING ` + profileColumns
	return r.updateReturning(ctx, query,
		userID,
		ptrString(f.FirstName),
		ptrString(f.LastName),
		ptrString(f.LinkedInURL),
		ptrInt(f.YearsOfExperience),
		ptrString(f.UndergraduateUniversity),
		pq.Array(nonNil(f.Languages)),
		ptrString(f.CurrentLocation),
		ptrString(f.CurrentRole),
		ptrString(f.CurrentCompany),
		ptrString(f.LBSProgram),
		ptrInt(f.GraduationYear),
	)
}

func (r *PGRepo) FindCandidates(ctx context.Context, f CandidateFilter) ([]Profile, error) {
	where := []string{"onboarding_completed", "user_id <> $1"}
	args := []any{f.ExcludeUserID}
	add := func(clause string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if len(f.UserTypes) > 0 {
		types := make([]string, 0, len(f.UserTypes))
		for _, t := range f.UserTypes {
			types = append(types, string(t))
		}
		add("user_type = ANY($%d)", pq.Array(types))
	}
	switch f.OptInFor {
	case Student:
		where = append(where, "connect_with_students")
	case Alumni:
		where = append(where, "connect_with_alumni")
	}
	if len(f.Programs) > 0 {
		add("lbs_program = ANY($%d)", pq.Array(f.Programs))
	}
	if f.MinExperience != nil {
		add("years_of_experience >= $%d", *f.MinExperience)
	}
	if f.MaxExperience != nil {
		add("years_of_experience <= $%d", *f.MaxExperience)
	}
	if len(f.Industries) > 0 {
		// Stored entries read "Primary: a, b"; the overlap is on primaries.
		add("EXISTS (SELECT 1 FROM unnest(target_industries) t WHERE lower(trim(split_part(t, ':', 1))) = ANY($%d))",
			pq.Array(industries.Primaries(f.Industries)))
	}
	args = append(args, f.limit())
	query := `SELECT ` + profileColumns + ` FROM profiles
WHERE ` + strings.Join(where, " AND ") + `
ORDER BY updated_at DESC, user_id
LIMIT $` + fmt.Sprint(len(args))

	return r.queryProfiles(ctx, query, args...)
}

func (r *PGRepo) ListWeeklyRecipients(ctx context.Context) ([]Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles
WHERE send_weekly_updates AND onboarding_completed
ORDER BY user_id`
	return r.queryProfiles(ctx, query)
}

func (r *PGRepo) PutSummary(ctx context.Context, userID string, s Summary) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	const query = `
INSERT INTO profile_summaries (user_id, summary, updated_at)
VALUES ($1, $2::jsonb, now())
ON CONFLICT (user_id) DO UPDATE SET
  summary = EXCLUDED.summary,
  updated_at = now()`
	_, err = r.DB.ExecContext(ctx, query, userID, string(payload))
	return err
}

func (r *PGRepo) GetSummary(ctx context.Context, userID string) (Summary, error) {
	const query = `SELECT summary FROM profile_summaries WHERE user_id = $1`
	var raw []byte
	if err := r.DB.QueryRowContext(ctx, query, userID).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Summary{}, ErrSummaryNotFound
		}
		return Summary{}, err
	}
	var s Summary
	if err := json.Unmarshal(raw, &s); err != nil {
		return Summary{}, fmt.Errorf("decode summary: %w", err)
	}
	return s, nil
}

func (r *PGRepo) GetSummaries(ctx context.Context, userIDs []string) (map[string]Summary, error) {
	out := make(map[string]Summary, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	const query = `SELECT user_id, summary FROM profile_summaries WHERE user_id = ANY($1)`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(userIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var userID string
		var raw []byte
		if err := rows.Scan(&userID, &raw); err != nil {
			return nil, err
		}
		var s Summary
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode summary for %s: %w", userID, err)
		}
		out[userID] = s
	}
	return out, rows.Err()
}

func (r *PGRepo) queryProfiles(ctx context.Context, query string, args ...any) ([]Profile, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PGRepo) updateReturning(ctx context.Context, query string, args ...any) (Profile, error) {
	p, err := scanProfile(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	return p, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func ptrString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func ptrInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

var _ Repo = (*PGRepo)(nil)
