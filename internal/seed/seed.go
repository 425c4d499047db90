// Package seed fills a development database with demo profiles, videos and
// interactions. It goes through the services so the data obeys the same rules
// as user-created data.
package seed

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"reelhub/internal/models"
	"reelhub/internal/observability"
	"reelhub/internal/service"
	"reelhub/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
)

// Options controls how much data Run creates.
type Options struct {
	Users        int
	PostsPerUser int
	// LikeChance and FollowChance are percentages in [0, 100].
	LikeChance      int
	FollowChance    int
	CommentsPerPost int
	// Seed makes runs reproducible when non-zero.
	Seed int64
}

// DefaultOptions is a small but lively data set.
func DefaultOptions() Options {
	return Options{Users: 8, PostsPerUser: 3, LikeChance: 40, FollowChance: 30, CommentsPerPost: 2}
}

// Services are the operations Run uses.
type Services struct {
	Profiles *service.ProfileService
	Posts    *service.PostService
	Likes    *service.LikeService
	Comments *service.CommentService
	Follows  *service.FollowService
}

// Report counts what Run created.
type Report struct {
	Profiles int
	Posts    int
	Likes    int
	Comments int
	Follows  int
}

// placeholderVideo is a tiny body stored for every seeded post.
var placeholderVideo = []byte("\x00\x00\x00\x18ftypmp42reelhub-seed")

// Run creates opts.Users accounts worth of data.
func Run(ctx context.Context, svc Services, opts Options) (Report, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	f := gofakeit.New(seed)
	var report Report

	userIDs := make([]string, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		userID := "seed-" + f.UUID()
		_, err := svc.Profiles.CreateProfile(ctx, service.CreateProfileInput{
			UserID: userID,
			Name:   truncate(f.Name(), validation.MaxProfileNameLength),
			Bio:    truncate(f.HipsterSentence(8), validation.MaxBioLength),
		})
		if err != nil {
			return report, fmt.Errorf("seed profile %d: %w", i, err)
		}
		userIDs = append(userIDs, userID)
		report.Profiles++
	}

	var posts []*models.Post
	for _, userID := range userIDs {
		for j := 0; j < opts.PostsPerUser; j++ {
			post, err := svc.Posts.CreatePost(ctx, service.CreatePostInput{
				UserID:      userID,
				Caption:     truncate(f.HipsterSentence(f.Number(3, 12)), validation.MaxCaptionLength),
				FileName:    f.Word() + ".mp4",
				ContentType: "video/mp4",
				Size:        int64(len(placeholderVideo)),
				Body:        bytes.NewReader(placeholderVideo),
			})
			if err != nil {
				return report, fmt.Errorf("seed post for %s: %w", userID, err)
			}
			posts = append(posts, post)
			report.Posts++
		}
	}

	for _, userID := range userIDs {
		for _, other := range userIDs {
			if other == userID || f.Number(1, 100) > opts.FollowChance {
				continue
			}
			if _, err := svc.Follows.FollowUser(ctx, userID, other); err != nil {
				return report, fmt.Errorf("seed follow: %w", err)
			}
			report.Follows++
		}
		for _, post := range posts {
			if f.Number(1, 100) > opts.LikeChance {
				continue
			}
			if _, err := svc.Likes.CreateLike(ctx, userID, post.ID); err != nil {
				return report, fmt.Errorf("seed like: %w", err)
			}
			report.Likes++
		}
	}

	if len(userIDs) > 0 {
		for _, post := range posts {
			for k := 0; k < opts.CommentsPerPost; k++ {
				author := userIDs[f.Number(0, len(userIDs)-1)]
				text := truncate(f.Sentence(f.Number(2, 10)), validation.MaxCommentLength)
				if _, err := svc.Comments.CreateComment(ctx, author, post.ID, text); err != nil {
					return report, fmt.Errorf("seed comment: %w", err)
				}
				report.Comments++
			}
		}
	}

	observability.GlobalLogger.InfoContext(ctx, "seed complete",
		"profiles", report.Profiles, "posts", report.Posts, "likes", report.Likes,
		"comments", report.Comments, "follows", report.Follows)
	return report, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
