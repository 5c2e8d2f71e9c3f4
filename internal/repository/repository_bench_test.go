package repository

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/d60-Lab/linkrank/internal/model"
	"github.com/d60-Lab/linkrank/internal/testutil"
)

func BenchmarkUpvoteAddIfAbsent(b *testing.B) {
	db := testutil.NewDB(b)
	upvotes := NewUpvoteRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(b, db, "owner", model.RoleMember)
	links := make([]*model.Link, 100)
	for i := range links {
		links[i] = testutil.CreateLink(b, db, owner.ID, fmt.Sprintf("https://bench.example/%d", i),
			testutil.WithStatus(model.LinkStatusApproved))
	}
	users := make([]*model.User, 1000)
	for i := range users {
		users[i] = testutil.CreateUser(b, db, fmt.Sprintf("u%04d", i), model.RoleMember)
	}

	rnd := rand.New(rand.NewSource(42))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		u := users[rnd.Intn(len(users))]
		l := links[rnd.Intn(len(links))]
		_, _ = upvotes.AddIfAbsent(ctx, u.ID, l.ID)
	}
}

func BenchmarkListApproved(b *testing.B) {
	db := testutil.NewDB(b)
	links := NewLinkRepository(db)
	ctx := context.Background()

	// 构造：一个用户提交 N 个链接，一半通过审核
	const N = 2000
	owner := testutil.CreateUser(b, db, "owner", model.RoleMember)
	for i := 0; i < N; i++ {
		status := model.LinkStatusPending
		if i%2 == 0 {
			status = model.LinkStatusApproved
		}
		testutil.CreateLink(b, db, owner.ID, fmt.Sprintf("https://bench.example/%d", i),
			testutil.WithStatus(status), testutil.WithScore(int64(i%50)))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = links.ListApproved(ctx)
	}
}
