package db

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mammut-social/mammut/domain"
)

func TestCreateLikeDuplicate(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	objectURL := "http://node1.example.com/authors/" + uuid.NewString() + "/posts/" + uuid.NewString()
	like := &domain.Like{
		Id:         uuid.New(),
		AuthorURL:  "http://node2.example.com/authors/" + uuid.NewString(),
		ObjectKind: domain.KindPost,
		ObjectURL:  objectURL,
		CreatedAt:  time.Now(),
	}
	if err := db.CreateLike(like); err != nil {
		t.Fatalf("CreateLike failed: %v", err)
	}

	// Same author liking the same object again, even under a fresh id
	second := &domain.Like{
		Id:         uuid.New(),
		AuthorURL:  like.AuthorURL,
		ObjectKind: domain.KindPost,
		ObjectURL:  objectURL,
		CreatedAt:  time.Now(),
	}
	err := db.CreateLike(second)
	if err != ErrDuplicate {
		t.Errorf("Expected ErrDuplicate, got %v", err)
	}

	err, likes := db.ReadLikesByObjectURL(objectURL)
	if err != nil {
		t.Fatalf("ReadLikesByObjectURL failed: %v", err)
	}
	if len(*likes) != 1 {
		t.Errorf("Expected 1 like, got %d", len(*likes))
	}
}

func TestReadLikesByAuthorURL(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	authorURL := "http://node2.example.com/authors/" + uuid.NewString()
	for i := 0; i < 2; i++ {
		like := &domain.Like{
			Id:         uuid.New(),
			AuthorURL:  authorURL,
			ObjectKind: domain.KindPost,
			ObjectURL:  "http://node1.example.com/posts/" + uuid.NewString(),
			CreatedAt:  time.Now(),
		}
		if err := db.CreateLike(like); err != nil {
			t.Fatalf("CreateLike failed: %v", err)
		}
	}

	err, likes := db.ReadLikesByAuthorURL(authorURL)
	if err != nil {
		t.Fatalf("ReadLikesByAuthorURL failed: %v", err)
	}
	if len(*likes) != 2 {
		t.Errorf("Expected 2 likes, got %d", len(*likes))
	}
}

func TestCreateFollowRequestDuplicate(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	from := createRemoteAuthor(t, db, "Bob")
	to := createLocalAuthor(t, db, "alice", "Alice")

	request := &domain.FollowRequest{
		Id:           uuid.New(),
		FromAuthorId: from.Id,
		ToAuthorId:   to.Id,
		Summary:      "Bob wants to follow Alice",
		CreatedAt:    time.Now(),
	}
	if err := db.CreateFollowRequest(request); err != nil {
		t.Fatalf("CreateFollowRequest failed: %v", err)
	}

	second := &domain.FollowRequest{
		Id:           uuid.New(),
		FromAuthorId: from.Id,
		ToAuthorId:   to.Id,
		CreatedAt:    time.Now(),
	}
	err := db.CreateFollowRequest(second)
	if err != ErrDuplicate {
		t.Errorf("Expected ErrDuplicate, got %v", err)
	}
}

func TestReadFollowRequest(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	from := createRemoteAuthor(t, db, "Bob")
	to := createLocalAuthor(t, db, "alice", "Alice")

	request := &domain.FollowRequest{
		Id:           uuid.New(),
		FromAuthorId: from.Id,
		ToAuthorId:   to.Id,
		Summary:      "hello",
		CreatedAt:    time.Now(),
	}
	if err := db.CreateFollowRequest(request); err != nil {
		t.Fatalf("CreateFollowRequest failed: %v", err)
	}

	err, read := db.ReadFollowRequest(from.Id, to.Id)
	if err != nil {
		t.Fatalf("ReadFollowRequest failed: %v", err)
	}
	if read.Summary != "hello" {
		t.Errorf("Expected summary 'hello', got '%s'", read.Summary)
	}
}

func TestAddFollowerResolvesRequest(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	follower := createRemoteAuthor(t, db, "Bob")
	author := createLocalAuthor(t, db, "alice", "Alice")

	request := &domain.FollowRequest{
		Id:           uuid.New(),
		FromAuthorId: follower.Id,
		ToAuthorId:   author.Id,
		CreatedAt:    time.Now(),
	}
	if err := db.CreateFollowRequest(request); err != nil {
		t.Fatalf("CreateFollowRequest failed: %v", err)
	}

	if err := db.AddFollower(author.Id, follower.Id); err != nil {
		t.Fatalf("AddFollower failed: %v", err)
	}

	err, following := db.IsFollower(author.Id, follower.Id)
	if err != nil {
		t.Fatalf("IsFollower failed: %v", err)
	}
	if !following {
		t.Error("Expected follower relation after AddFollower")
	}

	// The pending request is gone once the follow is accepted
	err, pending := db.ReadFollowRequest(follower.Id, author.Id)
	if err == nil || pending != nil {
		t.Error("Expected follow request to be resolved")
	}
}

func TestAddFollowerIdempotent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	follower := createRemoteAuthor(t, db, "Bob")
	author := createLocalAuthor(t, db, "alice", "Alice")

	if err := db.AddFollower(author.Id, follower.Id); err != nil {
		t.Fatalf("AddFollower failed: %v", err)
	}
	if err := db.AddFollower(author.Id, follower.Id); err != nil {
		t.Fatalf("Second AddFollower failed: %v", err)
	}

	err, followers := db.ReadFollowers(author.Id, 1, 10)
	if err != nil {
		t.Fatalf("ReadFollowers failed: %v", err)
	}
	if len(*followers) != 1 {
		t.Errorf("Expected 1 follower, got %d", len(*followers))
	}
}

func TestRemoveFollower(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	follower := createRemoteAuthor(t, db, "Bob")
	author := createLocalAuthor(t, db, "alice", "Alice")

	if err := db.AddFollower(author.Id, follower.Id); err != nil {
		t.Fatalf("AddFollower failed: %v", err)
	}
	if err := db.RemoveFollower(author.Id, follower.Id); err != nil {
		t.Fatalf("RemoveFollower failed: %v", err)
	}

	err, following := db.IsFollower(author.Id, follower.Id)
	if err != nil {
		t.Fatalf("IsFollower failed: %v", err)
	}
	if following {
		t.Error("Expected no follower relation after RemoveFollower")
	}
}

func TestReadFollowersPagination(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	author := createLocalAuthor(t, db, "alice", "Alice")
	for i := 0; i < 4; i++ {
		follower := createRemoteAuthor(t, db, "Follower")
		if err := db.AddFollower(author.Id, follower.Id); err != nil {
			t.Fatalf("AddFollower failed: %v", err)
		}
	}

	err, page1 := db.ReadFollowers(author.Id, 1, 3)
	if err != nil {
		t.Fatalf("ReadFollowers failed: %v", err)
	}
	if len(*page1) != 3 {
		t.Errorf("Expected 3 followers on page 1, got %d", len(*page1))
	}

	err, _ = db.ReadFollowers(author.Id, 3, 3)
	if err != ErrPageNotFound {
		t.Errorf("Expected ErrPageNotFound, got %v", err)
	}
}
