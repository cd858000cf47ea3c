package services

import (
	"context"
	"errors"

	"github.com/TheX6/partnerkin-super-bot/internal/models"
	"github.com/TheX6/partnerkin-super-bot/internal/render"
	"github.com/google/uuid"
)

type Course struct {
	Key   string
	Title string
}

var courses = []Course{
	{Key: "company", Title: "🏢 О компании"},
	{Key: "product", Title: "📦 Продукт"},
	{Key: "sales", Title: "💼 Продажи"},
	{Key: "culture", Title: "🤝 Корпоративная культура"},
}

type CourseService struct{ *deps }

func (s *CourseService) Courses() []Course {
	return courses
}

func (s *CourseService) Course(key string) (Course, bool) {
	for _, c := range courses {
		if c.Key == key {
			return c, true
		}
	}
	return Course{}, false
}

// CourseByTitle resolves a menu label to a course.
func (s *CourseService) CourseByTitle(title string) (Course, bool) {
	for _, c := range courses {
		if c.Title == title {
			return c, true
		}
	}
	return Course{}, false
}

func (s *CourseService) ParsePoints(raw string) (int64, error) {
	return ParseInt("points", raw, 0, 100)
}

// Submit creates a pending claim awaiting admin review.
func (s *CourseService) Submit(ctx context.Context, user *models.User, testKey string, points int64, photoFileID string) (*models.TestSubmission, error) {
	if _, ok := s.Course(testKey); !ok {
		return nil, invalid("test", "Неизвестный тест")
	}
	if points < 0 || points > 100 {
		return nil, invalid("points", "Баллы должны быть от 0 до 100")
	}
	if photoFileID == "" {
		return nil, invalid("photo", "Пришли скриншот результата")
	}
	sub := &models.TestSubmission{
		UserID:        user.TelegramID,
		Username:      user.Username,
		TestName:      testKey,
		PointsClaimed: points,
		PhotoFileID:   photoFileID,
		Status:        models.StatusPending,
		CreatedAt:     s.now(),
	}
	if err := s.store.CreateSubmission(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *CourseService) Pending(ctx context.Context) ([]models.TestSubmission, error) {
	return s.store.ListSubmissions(ctx, models.StatusPending)
}

func (s *CourseService) Get(ctx context.Context, id uuid.UUID) (*models.TestSubmission, error) {
	return s.store.GetSubmission(ctx, id)
}

type Approval struct {
	Submission *models.TestSubmission
	Completed  int
	// Graduated is set when this approval completed the last required test.
	Graduated bool
}

func (s *CourseService) Approve(ctx context.Context, id uuid.UUID, reviewerID int64) (*Approval, error) {
	pending, err := s.store.GetSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	before, err := s.completed(ctx, pending.UserID)
	if err != nil {
		return nil, err
	}
	sub, err := s.store.ApproveSubmission(ctx, id, reviewerID, s.now())
	if err != nil {
		return nil, err
	}
	after, err := s.completed(ctx, sub.UserID)
	if err != nil {
		return nil, err
	}
	return &Approval{
		Submission: sub,
		Completed:  len(after),
		Graduated:  len(before) < s.cfg.GraduationCount && len(after) >= s.cfg.GraduationCount,
	}, nil
}

func (s *CourseService) Reject(ctx context.Context, id uuid.UUID, reviewerID int64, comment string) (*models.TestSubmission, error) {
	comment, err := requireText("comment", comment, 1000)
	if err != nil {
		return nil, err
	}
	return s.store.RejectSubmission(ctx, id, reviewerID, comment, s.now())
}

func (s *CourseService) completed(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.store.ListProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, r := range rows {
		if r.Completed {
			out = append(out, r.TestName)
		}
	}
	return out, nil
}

// Certificate renders the graduation certificate for a user. sample skips
// the completion check and lists every course.
func (s *CourseService) Certificate(ctx context.Context, user *models.User, sample bool) (render.Document, error) {
	var titles []string
	if sample {
		for _, c := range courses {
			titles = append(titles, c.Title)
		}
	} else {
		done, err := s.completed(ctx, user.TelegramID)
		if err != nil {
			return render.Document{}, err
		}
		if len(done) < s.cfg.GraduationCount {
			return render.Document{}, ErrNotGraduated
		}
		for _, key := range done {
			if c, ok := s.Course(key); ok {
				titles = append(titles, c.Title)
			}
		}
	}
	if len(titles) == 0 {
		return render.Document{}, errors.New("no courses to certify")
	}
	return render.Certificate(render.CertificateData{
		FullName: user.DisplayName(),
		Tests:    titles,
		IssuedAt: s.now(),
	})
}
