package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/epitaphe360/cms-backend/database"
	"github.com/epitaphe360/cms-backend/database/dbtest"
	"github.com/epitaphe360/cms-backend/errs"
	"github.com/epitaphe360/cms-backend/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func article(title, slug string, status models.Status) *models.Article {
	a := &models.Article{Record: models.Record{Title: title, Slug: slug, Status: status, Content: "<p>" + title + "</p>"}}
	a.Normalize()
	return a
}

func TestRepoCRUD(t *testing.T) {
	db := database.New(dbtest.Open(t))
	repo := db.ArticleRepo()
	ctx := context.Background()

	a := article("Premier article", "premier-article", models.StatusDraft)
	a.Sections = datatypes.JSONMap{"hero": map[string]any{"title": "Bonjour"}}
	a.SEO = datatypes.NewJSONType(models.SEO{Title: "SEO", Keywords: []string{"agence"}})
	require.NoError(t, repo.Add(ctx, a))
	require.NotEqual(t, uuid.Nil, a.ID)

	found, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Premier article", found.Title)
	assert.Equal(t, map[string]any{"title": "Bonjour"}, found.Sections["hero"])
	assert.Equal(t, []string{"agence"}, found.SEO.Data().Keywords)

	found.Title = "Premier article modifié"
	require.NoError(t, repo.Update(ctx, found))

	bySlug, err := repo.FindBy(ctx, "slug", "premier-article")
	require.NoError(t, err)
	assert.Equal(t, "Premier article modifié", bySlug.Title)

	require.NoError(t, repo.Delete(ctx, a.ID))
	_, err = repo.FindByID(ctx, a.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepoMissingRows(t *testing.T) {
	repo := database.New(dbtest.Open(t)).ArticleRepo()
	ctx := context.Background()

	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), gorm.ErrRecordNotFound)

	ghost := article("Fantôme", "fantome", models.StatusDraft)
	ghost.ID = uuid.New()
	assert.ErrorIs(t, repo.Update(ctx, ghost), gorm.ErrRecordNotFound)

	_, err := repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepoUniqueSlug(t *testing.T) {
	repo := database.New(dbtest.Open(t)).PageRepo()
	ctx := context.Background()

	first := &models.Page{Record: models.Record{Title: "Contact", Slug: "contact"}}
	first.Normalize()
	require.NoError(t, repo.Add(ctx, first))

	second := &models.Page{Record: models.Record{Title: "Contact bis", Slug: "contact"}}
	second.Normalize()
	err := repo.Add(ctx, second)
	require.Error(t, err)
	assert.True(t, errs.IsUniqueViolation(err))
}

func TestRepoListFilters(t *testing.T) {
	db := database.New(dbtest.Open(t))
	repo := db.ArticleRepo()
	ctx := context.Background()

	category := &models.Category{Name: "Actualités", Slug: "actualites", Type: models.CategoryArticle}
	require.NoError(t, db.CategoryRepo().Add(ctx, category))

	published := article("Salon 2024", "salon-2024", models.StatusPublished)
	published.CategoryID = &category.ID
	require.NoError(t, repo.Add(ctx, published))
	require.NoError(t, repo.Add(ctx, article("Brouillon salon", "brouillon-salon", models.StatusDraft)))
	require.NoError(t, repo.Add(ctx, article("Recrutement 50%", "recrutement", models.StatusPublished)))

	rows, total, err := repo.List(ctx, database.ListQuery{Status: "published"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, rows, 2)

	rows, total, err = repo.List(ctx, database.ListQuery{Search: "SALON"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, rows, 2)

	rows, _, err = repo.List(ctx, database.ListQuery{Search: "50%"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "recrutement", rows[0].Slug)

	rows, total, err = repo.List(ctx, database.ListQuery{Filters: map[string]string{"categoryId": category.ID.String()}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, "salon-2024", rows[0].Slug)

	rows, total, err = repo.List(ctx, database.ListQuery{Filters: map[string]string{"unknown": "x"}, Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, rows, 1)

	rows, _, err = repo.List(ctx, database.ListQuery{Search: "nothing matches"})
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestRepoListExplicitOrder(t *testing.T) {
	repo := database.New(dbtest.Open(t)).PageRepo()
	ctx := context.Background()

	for _, seed := range []struct {
		title string
		order int
	}{{"Zeta", 1}, {"Alpha", 2}, {"Beta", 1}} {
		p := &models.Page{Record: models.Record{Title: seed.title}, Order: seed.order}
		p.Normalize()
		require.NoError(t, repo.Add(ctx, p))
	}

	rows, _, err := repo.List(ctx, database.ListQuery{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Beta", "Zeta", "Alpha"}, []string{rows[0].Title, rows[1].Title, rows[2].Title})
}

func TestBounded(t *testing.T) {
	assert.Equal(t, database.DefaultLimit, database.ListQuery{}.Bounded().Limit)
	assert.Equal(t, database.MaxLimit, database.ListQuery{Limit: 10_000}.Bounded().Limit)
	assert.Equal(t, 0, database.ListQuery{Offset: -3}.Bounded().Offset)
	assert.Equal(t, 7, database.ListQuery{Limit: 7}.Bounded().Limit)
}

func TestUserRepoFindByEmail(t *testing.T) {
	repo := database.New(dbtest.Open(t)).UserRepo()
	ctx := context.Background()

	u := &models.User{Email: "Contact@Epitaphe360.com", Name: "Contact", Role: models.RoleUser, PasswordHash: "x"}
	u.Normalize()
	require.NoError(t, repo.Add(ctx, u))

	found, err := repo.FindByEmail(ctx, "  CONTACT@epitaphe360.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
	assert.Equal(t, "x", found.PasswordHash)

	dup := &models.User{Email: "contact@epitaphe360.com", Name: "Dup", Role: models.RoleUser, PasswordHash: "y"}
	assert.True(t, errs.IsUniqueViolation(repo.Add(ctx, dup)))
}

func TestAuditLogRepoList(t *testing.T) {
	repo := database.New(dbtest.Open(t)).AuditLogRepo()
	ctx := context.Background()

	actor, target := uuid.New(), uuid.New()
	base := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	for i, action := range []models.AuditAction{models.AuditCreate, models.AuditUpdate, models.AuditDelete} {
		require.NoError(t, repo.Add(ctx, &models.AuditLog{
			UserID:     actor,
			Action:     action,
			EntityType: "article",
			EntityID:   target,
			Changes:    datatypes.JSON(`{}`),
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.Add(ctx, &models.AuditLog{
		UserID: uuid.New(), Action: models.AuditCreate, EntityType: "page", EntityID: uuid.New(),
		Changes: datatypes.JSON(`{}`), CreatedAt: base,
	}))

	entries, total, err := repo.List(ctx, database.AuditQuery{EntityID: target.String()})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, entries, 3)
	assert.Equal(t, models.AuditDelete, entries[0].Action)
	assert.Equal(t, models.AuditCreate, entries[2].Action)

	_, total, err = repo.List(ctx, database.AuditQuery{EntityType: "page"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	entries, total, err = repo.List(ctx, database.AuditQuery{UserID: actor.String(), Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, entries, 2)
}
