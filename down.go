package byterange

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fooofei/go/byterange/config"
)

// a chunk should be done in 1 minute
const chunkTimeout = time.Minute

// Download fetches the resource at url into memory with concurrent range requests.
func Download(ctx context.Context, clt Requester, url string, cfg config.Download) ([]byte, error) {
	var ra, err = probe(ctx, clt, url)
	if err != nil {
		return nil, err
	}
	var buf = make([]byte, ra.Size())
	var tasks = splitChunks(ra.Size(), cfg.ChunkSize)
	for i := range tasks {
		tasks[i].Content = buf[tasks[i].Offset : tasks[i].Offset+tasks[i].Size]
	}
	if err = fetchChunks(ctx, ra, tasks, cfg.Concurrency, nil); err != nil {
		return nil, err
	}
	return buf, nil
}

// DownloadTo fetches the resource at url with concurrent range requests and
// writes every chunk to w at its offset. w must accept concurrent WriteAt
// calls for disjoint spans, as *os.File does. It returns the resource size.
func DownloadTo(ctx context.Context, clt Requester, url string, w io.WriterAt, cfg config.Download) (int64, error) {
	var ra, err = probe(ctx, clt, url)
	if err != nil {
		return 0, err
	}
	var tasks = splitChunks(ra.Size(), cfg.ChunkSize)
	err = fetchChunks(ctx, ra, tasks, cfg.Concurrency, func(task chunkTask) error {
		if _, err := w.WriteAt(task.Content, task.Offset); err != nil {
			return fmt.Errorf("write chunk at %d: %w", task.Offset, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return ra.Size(), nil
}

func probe(ctx context.Context, clt Requester, url string) (*ReaderAt, error) {
	var req, err = http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return NewReaderAt(clt, req)
}

type chunkTask struct {
	Offset int64
	Size   int64
	// Content is the destination, allocated by the worker when nil.
	Content []byte
}

func splitChunks(totalSize, chunkSize int64) []chunkTask {
	if chunkSize <= 0 {
		chunkSize = config.DefaultDownloadChunkSize
	}
	var taskList = make([]chunkTask, 0, totalSize/chunkSize+1)
	for offset := int64(0); offset < totalSize; offset += chunkSize {
		taskList = append(taskList, chunkTask{
			Offset: offset,
			Size:   min(chunkSize, totalSize-offset),
		})
	}
	return taskList
}

// fetchChunks reads every task with concurrentCount workers, store is called
// with each filled task when not nil. The first error cancels the others.
func fetchChunks(ctx context.Context, ra *ReaderAt, taskList []chunkTask, concurrentCount int, store func(chunkTask) error) error {
	if concurrentCount < 1 {
		concurrentCount = 1
	}
	var taskCh = make(chan chunkTask, len(taskList))
	for _, task := range taskList {
		taskCh <- task
	}
	close(taskCh)

	var group, errCtx = errgroup.WithContext(ctx)
	for i := 0; i < concurrentCount; i++ {
		group.Go(func() error {
			for task := range taskCh {
				if err := errCtx.Err(); err != nil {
					return err
				}
				if task.Content == nil {
					task.Content = make([]byte, task.Size)
				}
				if err := readChunk(errCtx, ra, task); err != nil {
					return err
				}
				if store != nil {
					if err := store(task); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}
	return group.Wait()
}

func readChunk(ctx context.Context, ra *ReaderAt, task chunkTask) error {
	var cancel context.CancelFunc
	ctx, cancel = context.WithTimeout(ctx, chunkTimeout)
	defer cancel()
	var n, err = ra.Clone(ctx).ReadAt(task.Content, task.Offset)
	if err != nil && !(err == io.EOF && n == len(task.Content)) {
		return fmt.Errorf("chunk at %d: %w", task.Offset, err)
	}
	if n != len(task.Content) {
		return fmt.Errorf("download size %v not equal with expect size %v, for task(offset %v size %v)",
			n, len(task.Content), task.Offset, len(task.Content))
	}
	return nil
}
