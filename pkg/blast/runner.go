package blast

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"amrscan/logger"
)

// blastJob is one blastn invocation: a single input file against a single
// reference database.
type blastJob struct {
	file     string
	database string
	dbPath   string
	outPath  string
}

// RunBlast searches every input file against every reference database with
// blastn, writing one tabular output per (file, database) pair into outDir,
// and returns the map the results parser consumes. At most nprocs blastn
// processes run at once. The parse itself stays sequential downstream, only
// the external searches fan out.
func RunBlast(files []string, databases map[string]string, outDir string, nprocs int) (FileBlastMap, error) {
	if nprocs < 1 {
		nprocs = 1
	}

	jobs := make(chan blastJob)
	var wg sync.WaitGroup

	var mu sync.Mutex
	fileBlastMap := make(FileBlastMap)
	var firstErr error

	for w := 0; w < nprocs; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				err := runBlastn(job)

				mu.Lock()
				if err != nil && firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}()
	}

	for _, file := range files {
		isolate := IsolateID(file)
		byDatabase := make(map[string]string, len(databases))

		for _, database := range sortedKeys(databases) {
			outPath := filepath.Join(outDir, fmt.Sprintf("%s_%s.blast.tsv", isolate, database))
			byDatabase[database] = outPath
			jobs <- blastJob{
				file:     file,
				database: database,
				dbPath:   databases[database],
				outPath:  outPath,
			}
		}

		fileBlastMap[file] = byDatabase
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return fileBlastMap, nil
}

// runBlastn calls the external blastn binary for one job.
func runBlastn(job blastJob) error {
	logger.Debug("running blastn",
		zap.String("file", job.file),
		zap.String("database", job.database))

	cmd := exec.Command(
		"blastn",
		"-query", job.file,
		"-db", job.dbPath,
		"-out", job.outPath,
		"-outfmt", OutputFormat,
		"-evalue", "0.001",
	)

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to execute blastn for %s against %s: %v: %s",
			job.file, job.database, err, string(output))
	}

	return nil
}
