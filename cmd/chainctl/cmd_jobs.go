package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Gerri254/chainctl/internal/forms"
	"github.com/Gerri254/chainctl/internal/pages"
	"github.com/Gerri254/chainctl/pkg/chainapi"
	"github.com/Gerri254/chainctl/pkg/models"
)

var (
	jobSkills     []string
	jobLocation   string
	jobEmployment string
	jobSearch     string
	jobPage       int

	postTitle       string
	postDescription string
	postSkills      []string
	postLocation    string
	postEmployment  string

	applyCoverLetter string
	matchMinScore    int
	advanceNotes     string
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Browse, post, and manage job postings",
}

var jobsBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse active job postings",
	RunE:  runJobsBrowse,
}

var jobsShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show one posting, with your skill match when signed in as a learner",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsShow,
}

var jobsPostCmd = &cobra.Command{
	Use:   "post",
	Short: "Create a job posting (employers)",
	RunE:  runJobsPost,
}

var jobsMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List your postings with stats (employers)",
	RunE:  runJobsMine,
}

var jobsMatchedCmd = &cobra.Command{
	Use:   "matched",
	Short: "List postings matched to your verified skills (learners)",
	RunE:  runJobsMatched,
}

var jobsApplyCmd = &cobra.Command{
	Use:   "apply <job-id>",
	Short: "Apply to a posting (learners)",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsApply,
}

var jobsApplicantsCmd = &cobra.Command{
	Use:   "applicants <job-id>",
	Short: "Review applicants for one of your postings (employers)",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsApplicants,
}

var jobsAdvanceCmd = &cobra.Command{
	Use:   "advance <job-id> <application-id> <status>",
	Short: "Move an application through the review pipeline (employers)",
	Long: `Move an application to its next status.

Legal moves: pending -> reviewed, shortlisted or rejected;
reviewed -> shortlisted or rejected; shortlisted -> accepted.`,
	Args: cobra.ExactArgs(3),
	RunE: runJobsAdvance,
}

func init() {
	jobsBrowseCmd.Flags().StringSliceVar(&jobSkills, "skill", nil, "filter by required skill (repeatable)")
	jobsBrowseCmd.Flags().StringVar(&jobLocation, "location", "", "filter by location")
	jobsBrowseCmd.Flags().StringVar(&jobEmployment, "employment", "", "filter by employment type")
	jobsBrowseCmd.Flags().StringVar(&jobSearch, "search", "", "free-text search")
	jobsBrowseCmd.Flags().IntVar(&jobPage, "page", 1, "result page")

	jobsPostCmd.Flags().StringVar(&postTitle, "title", "", "posting title")
	jobsPostCmd.Flags().StringVar(&postDescription, "description", "", "posting description")
	jobsPostCmd.Flags().StringSliceVar(&postSkills, "skill", nil, "required skill (repeatable)")
	jobsPostCmd.Flags().StringVar(&postLocation, "location", "", "job location")
	jobsPostCmd.Flags().StringVar(&postEmployment, "employment", "full_time", "employment type")

	jobsApplyCmd.Flags().StringVar(&applyCoverLetter, "cover-letter", "", "cover letter text")
	jobsMatchedCmd.Flags().IntVar(&matchMinScore, "min-score", 60, "minimum match score")
	jobsAdvanceCmd.Flags().StringVar(&advanceNotes, "notes", "", "reviewer notes")

	jobsCmd.AddCommand(jobsBrowseCmd, jobsShowCmd, jobsPostCmd, jobsMineCmd,
		jobsMatchedCmd, jobsApplyCmd, jobsApplicantsCmd, jobsAdvanceCmd)
	rootCmd.AddCommand(jobsCmd)
}

func runJobsBrowse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	p := pages.NewJobBrowse(a.env())
	defer p.Close()
	p.SetFilters(chainapi.JobFilters{
		Skills:         jobSkills,
		Location:       jobLocation,
		EmploymentType: jobEmployment,
		Search:         jobSearch,
		Page:           jobPage,
	})

	page, err := p.Load(ctx)
	if err != nil {
		return friendly(err)
	}
	fmt.Println(pages.RenderJobPage(page))
	return nil
}

func runJobsShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	p := pages.NewJobDetail(a.env(), args[0])
	defer p.Close()

	view, err := p.Load(ctx)
	if err != nil {
		return friendly(err)
	}
	fmt.Println(view.Render())
	return nil
}

func runJobsPost(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	form := forms.JobPosting{
		Title:          postTitle,
		Description:    postDescription,
		SkillsRequired: postSkills,
		Location:       postLocation,
		EmploymentType: postEmployment,
	}
	posting, fieldErrs, err := form.Submit(ctx, a.client.Jobs)
	if !fieldErrs.Valid() {
		printFieldErrors(fieldErrs)
		if err != nil {
			return fmt.Errorf("posting rejected")
		}
		return fmt.Errorf("posting form is incomplete")
	}
	if err != nil {
		a.feed.Failure(err, "Failed to create posting")
		a.printFeed()
		return err
	}
	fmt.Printf("Posted %q (%s)\n", posting.Title, posting.ID)
	return nil
}

func runJobsMine(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	p := pages.NewEmployerPostings(a.env())
	defer p.Close()

	view, err := p.Load(ctx)
	if err != nil {
		return friendly(err)
	}
	fmt.Println(view.Render())
	return nil
}

func runJobsMatched(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	p := pages.NewMatchedJobs(a.env(), matchMinScore)
	defer p.Close()

	jobs, err := p.Load(ctx)
	if err != nil {
		return friendly(err)
	}
	fmt.Println(pages.RenderMatchedJobs(jobs))
	return nil
}

func runJobsApply(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	p := pages.NewJobDetail(a.env(), args[0])
	defer p.Close()

	if _, err := p.Apply(ctx, applyCoverLetter); err != nil {
		a.printFeed()
		return friendly(err)
	}
	a.printFeed()
	return nil
}

func runJobsApplicants(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	p := pages.NewApplicantReview(a.env(), args[0])
	defer p.Close()

	apps, err := p.Load(ctx)
	if err != nil {
		return friendly(err)
	}
	fmt.Println(pages.RenderApplicants(apps))
	return nil
}

func runJobsAdvance(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	next := models.ApplicationStatus(strings.ToLower(args[2]))
	p := pages.NewApplicantReview(a.env(), args[0])
	defer p.Close()

	apps, err := p.Advance(ctx, args[1], next, advanceNotes)
	if err != nil {
		a.printFeed()
		return friendly(err)
	}
	a.printFeed()
	fmt.Println(pages.RenderApplicants(apps))
	return nil
}
