package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"Plume/internal/model"
	"Plume/internal/pkg/aggregate"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db, mock
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func mustRange(t *testing.T, start, end string) aggregate.DateRange {
	t.Helper()
	r, err := aggregate.NewDateRange(day(start), day(end))
	require.NoError(t, err)
	return r
}

func TestPostRepo_QueryTikTok(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)
	r := mustRange(t, "2024-01-01", "2024-01-07")

	play := int64(100)
	view := int64(50)
	rows := sqlmock.NewRows([]string{"id", "video_id", "username", "posted_at", "play_count", "view_count", "like_count", "comment_count", "share_count", "save_count", "description"}).
		AddRow(1, "v1", "@Alice", day("2024-01-02"), play, view, 3, 1, 2, 0, "hello #Launch").
		AddRow(2, "v2", "alice", day("2024-01-03"), nil, view, 0, 0, 0, 0, "")
	mock.ExpectQuery("SELECT \\* FROM `tiktok_posts` WHERE LOWER\\(TRIM\\(LEADING '@' FROM TRIM\\(username\\)\\)\\) IN \\(\\?,\\?\\) AND \\(posted_at >= \\? AND posted_at < \\?\\) ORDER BY COALESCE").
		WithArgs("alice", "bob", r.Start, r.End.AddDate(0, 0, 1)).
		WillReturnRows(rows)

	posts, err := repo.QueryPosts(context.Background(), aggregate.PlatformTikTok, []aggregate.Handle{"alice", "bob"}, r)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, aggregate.Handle("alice"), posts[0].Handle)
	assert.Equal(t, int64(100), posts[0].Views)
	assert.Equal(t, int64(2), posts[0].Shares)
	// play_count 为空时退回 view_count
	assert.Equal(t, int64(50), posts[1].Views)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepo_QueryYouTube(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)
	r := mustRange(t, "2024-01-01", "2024-01-01")

	rows := sqlmock.NewRows([]string{"id", "video_id", "channel_id", "published_at", "view_count", "like_count", "comment_count", "title", "description"}).
		AddRow(7, "yt1", "UCabc", day("2024-01-01"), 10, 1, 0, "Title", "#launch")
	mock.ExpectQuery("SELECT \\* FROM `youtube_videos` WHERE TRIM\\(channel_id\\) IN \\(\\?\\)").
		WillReturnRows(rows)

	posts, err := repo.QueryPosts(context.Background(), aggregate.PlatformYouTube, []aggregate.Handle{"UCabc"}, r)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "yt1", posts[0].ExternalID)
	assert.Equal(t, "Title\n#launch", posts[0].Text)
}

func TestPostRepo_NoHandles(t *testing.T) {
	db, mock := newMockDB(t)
	posts, err := NewPostRepository(db).QueryPosts(context.Background(), aggregate.PlatformInstagram, nil, mustRange(t, "2024-01-01", "2024-01-02"))
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepo_Error(t *testing.T) {
	db, mock := newMockDB(t)
	boom := errors.New("server has gone away")
	mock.ExpectQuery("SELECT \\* FROM `instagram_posts`").WillReturnError(boom)

	_, err := NewPostRepository(db).QueryPosts(context.Background(), aggregate.PlatformInstagram, []aggregate.Handle{"bob"}, mustRange(t, "2024-01-01", "2024-01-02"))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "instagram_posts")
}

func TestChunkHandles(t *testing.T) {
	handles := []aggregate.Handle{"a", "b", "c", "d", "e"}
	chunks := chunkHandles(handles, 2)
	require.Len(t, chunks, 3)
	assert.Equal(t, []aggregate.Handle{"e"}, chunks[2])
	assert.Len(t, chunkHandles(handles, 10), 1)
}

func TestSnapshotRepo_Query(t *testing.T) {
	db, mock := newMockDB(t)
	r := mustRange(t, "2024-01-01", "2024-01-03")
	rows := sqlmock.NewRows([]string{"id", "user_id", "platform", "captured_at", "views", "likes", "comments", "shares", "saves"}).
		AddRow(1, 5, "tiktok", day("2024-01-01"), 100, 10, 1, 0, 0).
		AddRow(2, 5, "tiktok", day("2024-01-02"), 150, 12, 1, 1, 0)
	mock.ExpectQuery("SELECT \\* FROM `metric_snapshots` WHERE user_id IN \\(\\?,\\?\\) AND platform = \\? AND \\(captured_at >= \\? AND captured_at < \\?\\) ORDER BY user_id ASC, captured_at ASC").
		WithArgs(5, 6, "tiktok", r.Start, r.End.AddDate(0, 0, 1)).
		WillReturnRows(rows)

	snaps, err := NewSnapshotRepository(db).QuerySnapshots(context.Background(), []uint64{5, 6}, aggregate.PlatformTikTok, r)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, aggregate.PlatformTikTok, snaps[1].Platform)
	assert.Equal(t, int64(150), snaps[1].Views)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepo_NoUsers(t *testing.T) {
	db, _ := newMockDB(t)
	snaps, err := NewSnapshotRepository(db).QuerySnapshots(context.Background(), nil, aggregate.PlatformTikTok, mustRange(t, "2024-01-01", "2024-01-01"))
	require.NoError(t, err)
	assert.Nil(t, snaps)
}

func TestIdentityRepo_Reads(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewIdentityRepository(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT \\* FROM `campaign_employee_handles` WHERE campaign_id = \\? AND user_id = \\?").
		WithArgs(3, 7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "campaign_id", "user_id", "platform", "handle"}).
			AddRow(1, 3, 7, "tiktok", "@Team"))
	mock.ExpectQuery("SELECT \\* FROM `campaign_participants` WHERE campaign_id = \\?").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "campaign_id", "platform", "handle"}))
	mock.ExpectQuery("SELECT \\* FROM `user_handles` WHERE user_id = \\?").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "platform", "handle"}).
			AddRow(1, 7, "instagram", "alice").
			AddRow(2, 7, "instagram", "alice.alt"))

	assigned, err := repo.GetCampaignEmployeeHandles(ctx, 3, 7)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, "@Team", assigned[0].Handle)

	participants, err := repo.GetCampaignParticipants(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, participants)

	owned, err := repo.GetUserHandles(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, owned, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdentityRepo_SaveIgnoresDuplicates(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `campaign_employee_handles` .* ON DUPLICATE KEY UPDATE").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := NewIdentityRepository(db).SaveCampaignEmployeeHandle(context.Background(), &model.CampaignEmployeeHandle{
		CampaignID: 3, UserID: 7, Platform: "youtube", Handle: "UCabc",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepo(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCampaignRepository(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT \\* FROM `campaigns` WHERE `campaigns`.`id` = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "start_date", "end_date", "required_hashtags"}).
			AddRow(3, "Launch", day("2024-01-01"), day("2024-01-31"), `["#launch","promo"]`))
	mock.ExpectQuery("SELECT \\* FROM `campaigns` WHERE `campaigns`.`id` = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("SELECT `user_id` FROM `campaign_members` WHERE campaign_id = \\? ORDER BY user_id ASC").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(7).AddRow(9))

	c, err := repo.GetCampaignById(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, model.StringList{"#launch", "promo"}, c.RequiredHashtags)

	missing, err := repo.GetCampaignById(ctx, 4)
	require.NoError(t, err)
	assert.Nil(t, missing)

	ids, err := repo.GetMemberIDs(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []uint64{7, 9}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetEmployeeIDs(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT `id` FROM `users` WHERE is_employee = \\? AND is_delete = \\? ORDER BY id ASC").
		WithArgs(true, false).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2).AddRow(5))

	ids, err := NewUserRepo(db).GetEmployeeIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 5}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetUserById(t *testing.T) {
	db, mock := newMockDB(t)
	handle := "UCxyz"
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE is_delete = \\? AND `users`.`id` = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "youtube_channel_id", "is_employee"}).
			AddRow(7, "alice", handle, true))

	u, err := NewUserRepo(db).GetUserById(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, u)
	require.NotNil(t, u.YouTubeChannelID)
	assert.Equal(t, handle, *u.YouTubeChannelID)
}
