package db

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mammut-social/mammut/domain"
)

// createTestPost is a helper that stores a post for the given author
func createTestPost(t *testing.T, db *DB, authorId uuid.UUID, title string, published time.Time) *domain.Post {
	post := &domain.Post{
		Id:          uuid.New(),
		AuthorId:    authorId,
		Title:       title,
		ContentType: "text/plain",
		Content:     "some content",
		Categories:  []string{"test"},
		Visibility:  domain.VisibilityPublic,
		Published:   published,
		Modified:    published,
	}
	if err := db.CreatePost(post); err != nil {
		t.Fatalf("Failed to create post: %v", err)
	}
	return post
}

func TestCreateAndReadPost(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	author := createLocalAuthor(t, db, "alice", "Alice")
	post := createTestPost(t, db, author.Id, "First Post", time.Now())

	err, read := db.ReadPostById(post.Id)
	if err != nil {
		t.Fatalf("ReadPostById failed: %v", err)
	}
	if read.Title != "First Post" {
		t.Errorf("Expected title 'First Post', got '%s'", read.Title)
	}
	if read.AuthorId != author.Id {
		t.Errorf("Expected AuthorId %s, got %s", author.Id, read.AuthorId)
	}
	if len(read.Categories) != 1 || read.Categories[0] != "test" {
		t.Errorf("Expected categories ['test'], got %v", read.Categories)
	}
}

func TestCreatePostDuplicateId(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	author := createLocalAuthor(t, db, "alice", "Alice")
	post := createTestPost(t, db, author.Id, "First Post", time.Now())

	err := db.CreatePost(post)
	if err != ErrDuplicate {
		t.Errorf("Expected ErrDuplicate, got %v", err)
	}
}

func TestUpsertPostKeepsPublished(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	author := createLocalAuthor(t, db, "alice", "Alice")
	published := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	post := createTestPost(t, db, author.Id, "Original Title", published)

	// Re-delivery with a later published timestamp must not move the
	// original publication time
	post.Title = "Updated Title"
	post.Published = time.Now()
	post.Modified = time.Now()
	if err := db.UpsertPost(post); err != nil {
		t.Fatalf("UpsertPost failed: %v", err)
	}

	err, read := db.ReadPostById(post.Id)
	if err != nil {
		t.Fatalf("ReadPostById failed: %v", err)
	}
	if read.Title != "Updated Title" {
		t.Errorf("Expected updated title, got '%s'", read.Title)
	}
	if !read.Published.Equal(published) {
		t.Errorf("Expected original published %v, got %v", published, read.Published)
	}
}

func TestUpdatePost(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	author := createLocalAuthor(t, db, "alice", "Alice")
	post := createTestPost(t, db, author.Id, "Old Title", time.Now())

	post.Title = "New Title"
	post.Visibility = domain.VisibilityFriends
	if err := db.UpdatePost(post); err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}

	err, read := db.ReadPostById(post.Id)
	if err != nil {
		t.Fatalf("ReadPostById failed: %v", err)
	}
	if read.Title != "New Title" {
		t.Errorf("Expected 'New Title', got '%s'", read.Title)
	}
	if read.Visibility != domain.VisibilityFriends {
		t.Errorf("Expected visibility FRIENDS, got '%s'", read.Visibility)
	}
}

func TestDeletePostRemovesComments(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	author := createLocalAuthor(t, db, "alice", "Alice")
	post := createTestPost(t, db, author.Id, "With Comments", time.Now())

	comment := &domain.Comment{
		Id:          uuid.New(),
		PostId:      post.Id,
		AuthorId:    author.Id,
		AuthorURL:   author.URL(),
		Content:     "a comment",
		ContentType: "text/plain",
		Published:   time.Now(),
	}
	if err := db.UpsertComment(comment); err != nil {
		t.Fatalf("UpsertComment failed: %v", err)
	}

	if err := db.DeletePost(post.Id); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}

	err, read := db.ReadPostById(post.Id)
	if err == nil || read != nil {
		t.Error("Expected post to be gone after delete")
	}

	err, count := db.CountCommentsByPost(post.Id)
	if err != nil {
		t.Fatalf("CountCommentsByPost failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 comments after post delete, got %d", count)
	}
}

func TestReadPostsByAuthorPagination(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	author := createLocalAuthor(t, db, "alice", "Alice")
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		createTestPost(t, db, author.Id, "Post", base.Add(time.Duration(i)*time.Hour))
	}

	err, page1 := db.ReadPostsByAuthor(author.Id, 1, 3)
	if err != nil {
		t.Fatalf("ReadPostsByAuthor failed: %v", err)
	}
	if len(*page1) != 3 {
		t.Errorf("Expected 3 posts on page 1, got %d", len(*page1))
	}

	// Newest first
	if !(*page1)[0].Published.After((*page1)[1].Published) {
		t.Error("Expected posts ordered newest first")
	}

	err, _ = db.ReadPostsByAuthor(author.Id, 3, 3)
	if err != ErrPageNotFound {
		t.Errorf("Expected ErrPageNotFound for page beyond the end, got %v", err)
	}
}

func TestReadPublicPostsFiltering(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	author := createLocalAuthor(t, db, "alice", "Alice")

	public := createTestPost(t, db, author.Id, "Public", time.Now())

	private := &domain.Post{
		Id:         uuid.New(),
		AuthorId:   author.Id,
		Title:      "Private",
		Visibility: domain.VisibilityPrivate,
		Published:  time.Now(),
		Modified:   time.Now(),
	}
	if err := db.CreatePost(private); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	unlisted := &domain.Post{
		Id:         uuid.New(),
		AuthorId:   author.Id,
		Title:      "Unlisted",
		Visibility: domain.VisibilityPublic,
		Unlisted:   true,
		Published:  time.Now(),
		Modified:   time.Now(),
	}
	if err := db.CreatePost(unlisted); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	err, posts := db.ReadPublicPosts(50)
	if err != nil {
		t.Fatalf("ReadPublicPosts failed: %v", err)
	}
	if len(*posts) != 1 {
		t.Fatalf("Expected 1 public listed post, got %d", len(*posts))
	}
	if (*posts)[0].Id != public.Id {
		t.Errorf("Expected post %s, got %s", public.Id, (*posts)[0].Id)
	}
}

func TestUpsertCommentUpdatesContent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	author := createLocalAuthor(t, db, "alice", "Alice")
	post := createTestPost(t, db, author.Id, "Post", time.Now())

	comment := &domain.Comment{
		Id:          uuid.New(),
		PostId:      post.Id,
		AuthorURL:   "http://node2.example.com/authors/" + uuid.NewString(),
		Content:     "original",
		ContentType: "text/plain",
		Published:   time.Now(),
	}
	if err := db.UpsertComment(comment); err != nil {
		t.Fatalf("UpsertComment failed: %v", err)
	}

	comment.Content = "edited"
	comment.ContentType = "text/markdown"
	if err := db.UpsertComment(comment); err != nil {
		t.Fatalf("Second UpsertComment failed: %v", err)
	}

	err, read := db.ReadCommentById(comment.Id)
	if err != nil {
		t.Fatalf("ReadCommentById failed: %v", err)
	}
	if read.Content != "edited" {
		t.Errorf("Expected content 'edited', got '%s'", read.Content)
	}
	if read.ContentType != "text/markdown" {
		t.Errorf("Expected content type 'text/markdown', got '%s'", read.ContentType)
	}

	err, count := db.CountCommentsByPost(post.Id)
	if err != nil {
		t.Fatalf("CountCommentsByPost failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 comment after re-delivery, got %d", count)
	}
}

func TestReadCommentsByPost(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	author := createLocalAuthor(t, db, "alice", "Alice")
	post := createTestPost(t, db, author.Id, "Post", time.Now())

	for i := 0; i < 3; i++ {
		comment := &domain.Comment{
			Id:          uuid.New(),
			PostId:      post.Id,
			AuthorId:    author.Id,
			AuthorURL:   author.URL(),
			Content:     "comment",
			ContentType: "text/plain",
			Published:   time.Now().Add(time.Duration(i) * time.Minute),
		}
		if err := db.UpsertComment(comment); err != nil {
			t.Fatalf("UpsertComment failed: %v", err)
		}
	}

	err, comments := db.ReadCommentsByPost(post.Id, 1, 10)
	if err != nil {
		t.Fatalf("ReadCommentsByPost failed: %v", err)
	}
	if len(*comments) != 3 {
		t.Errorf("Expected 3 comments, got %d", len(*comments))
	}
}
